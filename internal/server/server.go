package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"image"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kiesman99/slidedeck/internal/api"
	"github.com/kiesman99/slidedeck/internal/config"
	"github.com/kiesman99/slidedeck/internal/pyramid"
	"github.com/kiesman99/slidedeck/internal/slide"
	"github.com/kiesman99/slidedeck/pkg/tile"
)

// DescriptorPath is the URL of the Deep Zoom descriptor.
const DescriptorPath = "/slide.dzi"

const (
	viewerJS     = "https://cdn.jsdelivr.net/npm/openseadragon@4.1/build/openseadragon/openseadragon.min.js"
	viewerImages = "https://cdn.jsdelivr.net/npm/openseadragon@4.1/build/openseadragon/images/"
)

//go:embed templates/slide.html
var templates embed.FS

var viewerTemplate = template.Must(template.ParseFS(templates, "templates/slide.html"))

// Source is the bound pyramid the server reads from.
type Source interface {
	Path() string
	Properties() slide.Properties
	Descriptor(format string) ([]byte, error)
	Tile(level, col, row int) (image.Image, error)
}

// Server implements the ServerInterface from the generated API
type Server struct {
	source  Source
	format  string
	encoder *tile.Encoder
	debug   bool
}

// NewServer creates a server for source. settings must already be valid.
func NewServer(source Source, settings config.Settings) *Server {
	return &Server{
		source:  source,
		format:  settings.Pyramid.Format,
		encoder: tile.NewEncoder(settings.Pyramid.Quality),
		debug:   settings.Debug,
	}
}

type viewerData struct {
	Title        string
	SlideURL     string
	ViewerJS     string
	ViewerImages string
	Mpp          float64
}

// GetSlidePage renders the viewer page
func (s *Server) GetSlidePage(w http.ResponseWriter, r *http.Request) {
	props := s.source.Properties()
	data := viewerData{
		Title:        filepath.Base(s.source.Path()),
		SlideURL:     DescriptorPath,
		ViewerJS:     viewerJS,
		ViewerImages: viewerImages,
	}
	if props.MppX > 0 && props.MppY > 0 {
		data.Mpp = (props.MppX + props.MppY) / 2
	}

	var buf bytes.Buffer
	if err := viewerTemplate.Execute(&buf, data); err != nil {
		s.internalError(w, r, "render viewer page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	writeBody(w, buf.Bytes())
}

// GetSlideDescriptor serves the DZI document for the configured tile format
func (s *Server) GetSlideDescriptor(w http.ResponseWriter, r *http.Request) {
	dzi, err := s.source.Descriptor(s.format)
	if err != nil {
		s.internalError(w, r, "build descriptor", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	writeBody(w, dzi)
}

// GetSlideTile serves one encoded tile
func (s *Server) GetSlideTile(w http.ResponseWriter, r *http.Request, level, col, row, format string) {
	addr, err := tile.Resolve(level, col, row, format)
	if err != nil {
		s.handleTileError(w, r, err)
		return
	}

	img, err := s.source.Tile(addr.Level, addr.Column, addr.Row)
	if err != nil {
		s.handleTileError(w, r, fmt.Errorf("tile %s: %w", addr, err))
		return
	}
	if s.abandoned(r, addr) {
		return
	}

	data, err := s.encoder.Encode(img, addr.Format)
	if err != nil {
		s.handleTileError(w, r, fmt.Errorf("tile %s: %w", addr, err))
		return
	}
	if s.abandoned(r, addr) {
		return
	}

	w.Header().Set("Content-Type", addr.MimeType())
	writeBody(w, data)
}

// abandoned reports whether the client went away or the request timed out.
// Nothing may be written then: the timeout middleware owns the response.
func (s *Server) abandoned(r *http.Request, addr tile.Address) bool {
	err := r.Context().Err()
	if err != nil && s.debug {
		log.Printf("[%s] tile %s dropped: %v", middleware.GetReqID(r.Context()), addr, err)
	}
	return err != nil
}

// NotFound is the error handler for path parameters that cannot be bound.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request, err error) {
	s.handleTileError(w, r, err)
}

// handleTileError maps a tile failure onto a response. Bad addresses are
// the client's problem and answer 404; everything else is ours.
func (s *Server) handleTileError(w http.ResponseWriter, r *http.Request, err error) {
	var addrErr *tile.AddressError
	var paramErr *api.InvalidParamFormatError
	switch {
	case errors.As(err, &addrErr), errors.As(err, &paramErr), errors.Is(err, pyramid.ErrInvalidAddress):
		if s.debug {
			log.Printf("[%s] %s: %v", middleware.GetReqID(r.Context()), r.URL.Path, err)
		}
		s.writeErrorResponse(w, r, http.StatusNotFound, api.TILENOTFOUND, "No such tile")
	case errors.Is(err, tile.ErrEncode):
		s.internalError(w, r, "encode tile", err)
	default:
		s.internalError(w, r, "render tile", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.URL.Path, op, err)
	s.writeErrorResponse(w, r, http.StatusInternalServerError, api.INTERNALERROR, "Internal server error")
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, code api.ErrorResponseError, message string) {
	response := api.ErrorResponse{
		Error:   code,
		Message: message,
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		response.RequestId = &reqID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
