package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const jpegQuality = 85

// ResizeImage scales an image down to fit within maxSize (width or height) keeping the
// aspect ratio, and always returns JPEG bytes.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxSize || height > maxSize {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxSize
			newHeight = max(1, height*maxSize/width)
		} else {
			newHeight = maxSize
			newWidth = max(1, width*maxSize/height)
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// prepareFrame downscales a frame before it is sent to a model. Frames that cannot be
// decoded locally are passed through so the model still gets to judge them.
func prepareFrame(data []byte, maxSize int) []byte {
	if maxSize <= 0 {
		return data
	}
	resized, err := ResizeImage(data, maxSize)
	if err != nil {
		log.Printf("Sending frame unresized: %v", err)
		return data
	}
	return resized
}
