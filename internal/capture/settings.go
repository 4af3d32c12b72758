package capture

import "fmt"

// Default capture constraints. Quality uses the 1-100 JPEG scale.
const (
	DefaultMaxWidth       = 1216
	DefaultMaxBytes       = 4 * 1024 * 1024
	DefaultInitialQuality = 85
	DefaultFloorQuality   = 25
	DefaultQualityStep    = 10

	// MIMEType is the content type of every payload the pipeline produces.
	MIMEType = "image/jpeg"
)

// Settings bounds the output of a single capture.
type Settings struct {
	MaxWidth       int // widest allowed output, in pixels
	MaxBytes       int // byte budget for the encoded payload
	InitialQuality int
	FloorQuality   int
	QualityStep    int
}

// DefaultSettings matches what the route generator expects: 1216px wide,
// at most 4 MiB.
func DefaultSettings() Settings {
	return Settings{
		MaxWidth:       DefaultMaxWidth,
		MaxBytes:       DefaultMaxBytes,
		InitialQuality: DefaultInitialQuality,
		FloorQuality:   DefaultFloorQuality,
		QualityStep:    DefaultQualityStep,
	}
}

// Validate reports the first constraint the settings violate.
func (s Settings) Validate() error {
	switch {
	case s.MaxWidth <= 0:
		return fmt.Errorf("max width must be positive, got %d", s.MaxWidth)
	case s.MaxBytes <= 0:
		return fmt.Errorf("max bytes must be positive, got %d", s.MaxBytes)
	case s.FloorQuality < 1 || s.FloorQuality > 100:
		return fmt.Errorf("floor quality must be within 1-100, got %d", s.FloorQuality)
	case s.InitialQuality < s.FloorQuality || s.InitialQuality > 100:
		return fmt.Errorf("initial quality must be within %d-100, got %d", s.FloorQuality, s.InitialQuality)
	case s.QualityStep <= 0:
		return fmt.Errorf("quality step must be positive, got %d", s.QualityStep)
	}
	return nil
}

// WithDefaults fills zero fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.MaxWidth == 0 {
		s.MaxWidth = d.MaxWidth
	}
	if s.MaxBytes == 0 {
		s.MaxBytes = d.MaxBytes
	}
	if s.InitialQuality == 0 {
		s.InitialQuality = d.InitialQuality
	}
	if s.FloorQuality == 0 {
		s.FloorQuality = d.FloorQuality
	}
	if s.QualityStep == 0 {
		s.QualityStep = d.QualityStep
	}
	return s
}
