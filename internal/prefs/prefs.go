// Package prefs stores editor preferences that outlive a session but are
// not part of a saved route-setting document.
package prefs

import (
	"fmt"
	"os"
	"strings"

	"cled/internal/persistence"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

const File = ".cled_prefs.yaml"

const (
	MinSupersize = 1
	MaxSupersize = 8
)

type Prefs struct {
	WindowWidth     int     `yaml:"WindowWidth"`
	WindowHeight    int     `yaml:"WindowHeight"`
	LastStatePath   string  `yaml:"LastStatePath,omitempty"`
	WallModelPath   string  `yaml:"WallModelPath,omitempty"`
	HoldModelsPath  string  `yaml:"HoldModelsPath,omitempty"`
	LightIntensity  float32 `yaml:"LightIntensity"`
	ShadowStrength  float32 `yaml:"ShadowStrength"`
	CameraMoveSpeed float32 `yaml:"CameraMoveSpeed"`

	CaptureSettings persistence.CaptureSettings `yaml:"CaptureSettings"`
}

func Default() *Prefs {
	return &Prefs{
		WindowWidth:     1280,
		WindowHeight:    720,
		LightIntensity:  1,
		ShadowStrength:  0.5,
		CameraMoveSpeed: 4,
		CaptureSettings: persistence.CaptureSettings{
			ImagePath:      "capture.png",
			ImageSupersize: 2,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Prefs, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return Default(), fmt.Errorf("parse prefs: %w", err)
	}
	p.fillZero()
	return p, nil
}

// fillZero restores defaults for fields a hand-edited file zeroed out.
func (p *Prefs) fillZero() {
	d := Default()
	if p.WindowWidth <= 0 || p.WindowHeight <= 0 {
		p.WindowWidth, p.WindowHeight = d.WindowWidth, d.WindowHeight
	}
	if p.CameraMoveSpeed <= 0 {
		p.CameraMoveSpeed = d.CameraMoveSpeed
	}
	if p.CaptureSettings.ImagePath == "" {
		p.CaptureSettings.ImagePath = d.CaptureSettings.ImagePath
	}
	if p.CaptureSettings.ImageSupersize == 0 {
		p.CaptureSettings.ImageSupersize = d.CaptureSettings.ImageSupersize
	}
}

func (p *Prefs) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func (p *Prefs) Validate() error {
	el := errors.NewErrorList()
	if p.LightIntensity < 0 {
		el.Add(fmt.Errorf("light intensity must not be negative"))
	}
	if p.ShadowStrength < 0 || p.ShadowStrength > 1 {
		el.Add(fmt.Errorf("shadow strength must be within 0..1"))
	}
	el.Add(ValidateCapture(p.CaptureSettings))
	return el.Err()
}

// ValidateCapture checks capture settings typed in by the user.
func ValidateCapture(c persistence.CaptureSettings) error {
	el := errors.NewErrorList()
	if strings.TrimSpace(c.ImagePath) == "" {
		el.Add(fmt.Errorf("image path is required"))
	}
	if c.ImageSupersize < MinSupersize || c.ImageSupersize > MaxSupersize {
		el.Add(fmt.Errorf("image supersize must be within %d..%d, got %d", MinSupersize, MaxSupersize, c.ImageSupersize))
	}
	return el.Err()
}
