package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kiesman99/slidedeck/internal/pyramid"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [flags] [slide]",
		Short: "Print the geometry of a slide's Deep Zoom pyramid",
		Long: `Open a slide the way the server would and print its levels, resolution,
Deep Zoom geometry and descriptor, without serving anything.

Examples:
  slidedeck info CMU-1.tiff
  slidedeck info -s 510 -e 0 -f png CMU-1.tiff`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         a.runInfo,
	}
}

func (a *app) runInfo(cmd *cobra.Command, args []string) error {
	settings, err := a.loadSettings(args)
	if err != nil {
		return err
	}

	src, err := pyramid.Bind(settings.Slide, settings.Pyramid)
	if err != nil {
		return err
	}
	defer src.Close()

	return printInfo(cmd.OutOrStdout(), src)
}

func printInfo(w io.Writer, src *pyramid.Source) error {
	s := src.Slide()
	props := src.Properties()
	geo := src.Geometry()
	cfg := src.Config()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Slide:\t%s\n", src.Path())
	fmt.Fprintf(tw, "Decoder:\t%s\n", props.Vendor)
	size := s.Dimensions()
	fmt.Fprintf(tw, "Dimensions:\t%d x %d\n", size.X, size.Y)
	if props.MppX > 0 {
		fmt.Fprintf(tw, "Resolution:\t%.4f x %.4f µm/px\n", props.MppX, props.MppY)
	} else {
		fmt.Fprintf(tw, "Resolution:\tunknown\n")
	}
	tw.Flush()

	fmt.Fprintf(w, "\nSlide levels:\n")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "level\twidth\theight\tdownsample\t\n")
	for i := 0; i < s.LevelCount(); i++ {
		d := s.LevelDimensions(i)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.3f\t\n", i, d.X, d.Y, s.LevelDownsample(i))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nDeep Zoom levels (tile size %d, overlap %d, %d tiles):\n", geo.TileSize(), geo.Overlap(), geo.TileCount())
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "level\twidth\theight\tcolumns\trows\t\n")
	for level := 0; level < geo.LevelCount(); level++ {
		d, err := geo.LevelDimensions(level)
		if err != nil {
			return err
		}
		t, err := geo.LevelTiles(level)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t\n", level, d.X, d.Y, t.X, t.Y)
	}
	tw.Flush()

	dzi, err := src.Descriptor(cfg.Format)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nDescriptor:\n%s\n", dzi)
	return nil
}
