// Package qrcode renders QR codes as PNG images and as terminal text.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// quietZone is the white border, in modules, required around a QR symbol.
const quietZone = 4

// ErrEncoding is returned when text cannot be rendered as a QR code.
var ErrEncoding = errors.New("qr encoding failed")

// Encoder turns text into a raster image.
type Encoder interface {
	Encode(text string, width, height int) ([]byte, error)
}

// PNGEncoder encodes text as a PNG QR code with medium error correction.
type PNGEncoder struct{}

// Ensure PNGEncoder implements Encoder
var _ Encoder = PNGEncoder{}

// Encode returns a width x height PNG with the symbol centred on white.
// Modules are scaled by the largest whole factor that still fits the symbol
// and its quiet zone.
func (PNGEncoder) Encode(text string, width, height int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrEncoding)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrEncoding, width, height)
	}

	code, err := qr.Encode(text, qr.M)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	scale := min(width, height) / (code.Size + 2*quietZone)
	if scale < 1 {
		return nil, fmt.Errorf("%w: %dx%d is too small for a %d-module symbol",
			ErrEncoding, width, height, code.Size)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	side := code.Size * scale
	ox := (width - side) / 2
	oy := (height - side) / 2
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; x++ {
			if !code.Black(x, y) {
				continue
			}
			r := image.Rect(ox+x*scale, oy+y*scale, ox+(x+1)*scale, oy+(y+1)*scale)
			draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: png: %w", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// Half-block characters pack two rows of modules into one line of text.
const (
	blackWhite = "▄"
	blackBlack = " "
	whiteBlack = "▀"
	whiteWhite = "█"
)

// PrintTerminal writes text as a QR code made of half-block characters.
func PrintTerminal(w io.Writer, text string) {
	qrterminal.GenerateWithConfig(text, qrterminal.Config{
		Level:          qrterminal.M,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      blackBlack,
		BlackWhiteChar: blackWhite,
		WhiteChar:      whiteWhite,
		WhiteBlackChar: whiteBlack,
		QuietZone:      1,
	})
}
