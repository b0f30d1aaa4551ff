package cmd

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiesman99/slidedeck/internal/config"
	"github.com/kiesman99/slidedeck/internal/pyramid"
	"github.com/kiesman99/slidedeck/internal/server"
)

const shutdownTimeout = 10 * time.Second

// serve opens the slide, then binds the listener, then serves. Every
// startup failure is returned before a single connection is accepted.
func serve(cmd *cobra.Command, settings config.Settings) error {
	log.SetFlags(log.LstdFlags)

	src, err := pyramid.Bind(settings.Slide, settings.Pyramid)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Printf("Error closing slide: %v", err)
		}
	}()

	httpServer := &http.Server{
		Handler:      server.NewRouter(server.NewServer(src, settings), settings),
		ReadTimeout:  settings.Timeout,
		WriteTimeout: settings.Timeout,
	}

	ln, err := net.Listen("tcp", settings.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.Addr(), err)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down server...\n")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	printSummary(cmd, src, settings)

	if err := httpServer.Serve(ln); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}
	<-done

	return nil
}

func printSummary(cmd *cobra.Command, src *pyramid.Source, settings config.Settings) {
	out := cmd.ErrOrStderr()
	geo := src.Geometry()
	size := geo.Dimensions()

	fmt.Fprintf(out, "Slide: %s (%dx%d, %d Deep Zoom levels)\n", settings.Slide, size.X, size.Y, geo.LevelCount())
	if props := src.Properties(); props.MppX > 0 {
		fmt.Fprintf(out, "Resolution: %.4f x %.4f µm/px\n", props.MppX, props.MppY)
	}
	fmt.Fprintf(out, "Tiles: %s, %d px, overlap %d\n", settings.Pyramid.Format, settings.Pyramid.TileSize, settings.Pyramid.Overlap)
	fmt.Fprintf(out, "Starting slidedeck server on %s\n", settings.Addr())
	fmt.Fprintf(out, "Viewer: http://%s/\n", settings.Addr())
	fmt.Fprintf(out, "Descriptor: http://%s%s\n", settings.Addr(), server.DescriptorPath)
	if settings.Debug {
		fmt.Fprintf(out, "Profiler: http://%s/debug/pprof/\n", settings.Addr())
	}
}
