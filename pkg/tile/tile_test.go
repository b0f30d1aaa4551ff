package tile

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name                    string
		level, col, row, format string
		want                    Address
		wantErr                 error
	}{
		{name: "jpeg", level: "10", col: "0", row: "0", format: "jpeg", want: Address{Level: 10, Format: FormatJPEG}},
		{name: "png upper case", level: "3", col: "1", row: "2", format: "PNG", want: Address{Level: 3, Column: 1, Row: 2, Format: FormatPNG}},
		{name: "mixed case jpeg", level: "0", col: "0", row: "0", format: "JpEg", want: Address{Format: FormatJPEG}},
		{name: "leading zeros", level: "007", col: "01", row: "00", format: "jpeg", want: Address{Level: 7, Column: 1, Format: FormatJPEG}},
		{name: "gif", level: "0", col: "0", row: "0", format: "gif", wantErr: ErrUnsupportedFormat},
		{name: "jpg alias", level: "0", col: "0", row: "0", format: "jpg", wantErr: ErrUnsupportedFormat},
		{name: "empty format", level: "0", col: "0", row: "0", format: "", wantErr: ErrUnsupportedFormat},
		{name: "format checked first", level: "x", col: "y", row: "z", format: "tiff", wantErr: ErrUnsupportedFormat},
		{name: "negative level", level: "-1", col: "0", row: "0", format: "jpeg", wantErr: ErrMalformedAddress},
		{name: "signed column", level: "1", col: "+2", row: "0", format: "jpeg", wantErr: ErrMalformedAddress},
		{name: "non-numeric row", level: "1", col: "2", row: "abc", format: "png", wantErr: ErrMalformedAddress},
		{name: "empty level", level: "", col: "2", row: "3", format: "png", wantErr: ErrMalformedAddress},
		{name: "overflow", level: "1", col: "99999999999999999999", row: "3", format: "png", wantErr: ErrMalformedAddress},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.level, tc.col, tc.row, tc.format)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				var addrErr *AddressError
				if !errors.As(err, &addrErr) {
					t.Fatalf("expected *AddressError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Resolve = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	a := Address{Level: 12, Column: 3, Row: 4, Format: FormatPNG}
	if a.String() != "12/3_4.png" {
		t.Errorf("String = %q", a.String())
	}
	if a.MimeType() != "image/png" {
		t.Errorf("MimeType = %q", a.MimeType())
	}
}

// noiseImage returns an image with random pixels, which compresses poorly.
func noiseImage(w, h int) *image.NRGBA {
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestEncoder_JPEG(t *testing.T) {
	img := noiseImage(257, 33)

	data, err := NewEncoder(75).Encode(img, FormatJPEG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatal("output is not a JPEG stream")
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 257 || cfg.Height != 33 {
		t.Errorf("decoded size = %dx%d, want 257x33", cfg.Width, cfg.Height)
	}
}

func TestEncoder_JPEGQuality(t *testing.T) {
	img := noiseImage(128, 128)

	low, err := NewEncoder(10).Encode(img, FormatJPEG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	high, err := NewEncoder(95).Encode(img, FormatJPEG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("quality 10 produced %d bytes, quality 95 produced %d; expected fewer", len(low), len(high))
	}
}

func TestEncoder_PNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	img.Set(3, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	// Quality has no effect on PNG output.
	a, err := NewEncoder(5).Encode(img, FormatPNG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := NewEncoder(100).Encode(img, FormatPNG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("PNG output depends on quality")
	}

	decoded, err := png.Decode(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds().Size() != image.Pt(20, 10) {
		t.Errorf("decoded size = %v", decoded.Bounds().Size())
	}
	r, g, bl, _ := decoded.At(3, 4).RGBA()
	if r>>8 != 1 || g>>8 != 2 || bl>>8 != 3 {
		t.Errorf("pixel changed: (%d,%d,%d)", r>>8, g>>8, bl>>8)
	}
}

func TestEncoder_Deterministic(t *testing.T) {
	img := noiseImage(64, 64)
	enc := NewEncoder(75)

	for _, format := range []string{FormatJPEG, FormatPNG} {
		first, err := enc.Encode(img, format)
		if err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		second, err := enc.Encode(img, format)
		if err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("%s output differs between identical calls", format)
		}
	}
}

func TestEncoder_UnsupportedFormat(t *testing.T) {
	_, err := NewEncoder(75).Encode(noiseImage(4, 4), "gif")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
