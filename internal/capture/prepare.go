package capture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Prepared is an upright, width-bounded image encoded within budget.
type Prepared struct {
	Data    []byte
	Width   int
	Height  int
	Quality int
}

// Prepare decodes raw camera output, applies its EXIF orientation, downscales
// it to the configured width and encodes it as JPEG within the byte budget.
func Prepare(raw []byte, s Settings) (Prepared, error) {
	if err := s.Validate(); err != nil {
		return Prepared{}, fmt.Errorf("invalid settings: %w", err)
	}
	img, err := decode(raw)
	if err != nil {
		return Prepared{}, err
	}
	img = fitWidth(img, s.MaxWidth)
	data, quality, err := encodeToBudget(img, s)
	if err != nil {
		return Prepared{}, err
	}
	b := img.Bounds()
	return Prepared{Data: data, Width: b.Dx(), Height: b.Dy(), Quality: quality}, nil
}

func decode(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode image: empty input")
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// fitWidth never upscales.
func fitWidth(img image.Image, maxWidth int) image.Image {
	if img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

// encodeToBudget steps quality down from InitialQuality until the encoded
// size fits. The last attempt is made exactly at FloorQuality.
func encodeToBudget(img image.Image, s Settings) ([]byte, int, error) {
	quality := s.InitialQuality
	for {
		data, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, 0, err
		}
		if len(data) <= s.MaxBytes {
			return data, quality, nil
		}
		if quality <= s.FloorQuality {
			return nil, quality, fmt.Errorf("%w: %d bytes at quality %d, budget %d",
				ErrBudgetExceeded, len(data), quality, s.MaxBytes)
		}
		quality = max(quality-s.QualityStep, s.FloorQuality)
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg at quality %d: %w", quality, err)
	}
	return buf.Bytes(), nil
}
