package ui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/qeesung/image2ascii/convert"
)

// TerminalCapabilities describes how label photos can be drawn.
type TerminalCapabilities struct {
	Color bool
}

// DetectTerminalCapabilities inspects the environment.
func DetectTerminalCapabilities() TerminalCapabilities {
	_, noColor := os.LookupEnv("NO_COLOR")
	return TerminalCapabilities{
		Color: !noColor && os.Getenv("TERM") != "dumb",
	}
}

// RenderLabelPreview draws a label photo as ASCII art sized to fit the
// target box.
func RenderLabelPreview(data []byte, caps TerminalCapabilities, targetWidth, targetHeight int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode label image: %w", err)
	}
	return convertToASCII(img, caps, targetWidth, targetHeight), nil
}

// convertToASCII converts an image to ASCII art.
func convertToASCII(img image.Image, caps TerminalCapabilities, targetWidth, targetHeight int) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = caps.Color
	opts.Ratio = 0.5 // terminal cells are about twice as tall as wide

	return converter.Image2ASCIIString(img, &opts)
}
