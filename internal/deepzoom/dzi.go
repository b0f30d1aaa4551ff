package deepzoom

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Namespace is the XML namespace of Deep Zoom image descriptors.
const Namespace = "http://schemas.microsoft.com/deepzoom/2008"

// Descriptor is the root element of a .dzi document.
type Descriptor struct {
	XMLName  xml.Name       `xml:"http://schemas.microsoft.com/deepzoom/2008 Image"`
	Format   string         `xml:"Format,attr"`
	Overlap  int            `xml:"Overlap,attr"`
	TileSize int            `xml:"TileSize,attr"`
	Size     DescriptorSize `xml:"Size"`
}

// DescriptorSize holds the full-resolution image size.
type DescriptorSize struct {
	Height int `xml:"Height,attr"`
	Width  int `xml:"Width,attr"`
}

// Descriptor returns the descriptor of the pyramid with tiles in format.
func (g *Generator) Descriptor(format string) Descriptor {
	size := g.Dimensions()
	return Descriptor{
		Format:   format,
		Overlap:  g.overlap,
		TileSize: g.tileSize,
		Size:     DescriptorSize{Width: size.X, Height: size.Y},
	}
}

// DZI renders the .dzi XML document for tiles in format.
func (g *Generator) DZI(format string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(g.Descriptor(format)); err != nil {
		return nil, fmt.Errorf("encode dzi: %w", err)
	}
	return buf.Bytes(), nil
}
