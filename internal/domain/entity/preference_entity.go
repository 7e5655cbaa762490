package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// DisplayPreference holds the visual configuration of a profile page.
// Each sub-config is stored as its own JSON document.
type DisplayPreference struct {
	ID              string          `json:"id"`
	ProfileID       string          `json:"profileId"`
	UserID          string          `json:"userId"`
	WallpaperConfig WallpaperConfig `json:"wallpaperConfig"`
	FontConfig      FontConfig      `json:"fontConfig"`
	CornerConfig    CornerConfig    `json:"cornerConfig"`
	SelectedTheme   *string         `json:"selectedTheme"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// WallpaperConfig fields are all optional so a partial document can be
// merged over the stored one key by key.
type WallpaperConfig struct {
	Type            string           `json:"type,omitempty"`
	Image           *string          `json:"image,omitempty"`
	BackgroundColor *BackgroundColor `json:"backgroundColor,omitempty"`
}

type FontConfig struct {
	Name        string  `json:"name,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	StrokeColor *string `json:"strokeColor,omitempty"`
}

type CornerConfig struct {
	Type        string   `json:"type,omitempty"`
	FillColor   *string  `json:"fillColor,omitempty"`
	StrokeColor *string  `json:"strokeColor,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	ShadowSize  string   `json:"shadowSize,omitempty"`
	ShadowColor string   `json:"shadowColor,omitempty"`
}

// GradientStop is one color of a gradient background.
type GradientStop struct {
	Color  string  `json:"color"`
	Amount float64 `json:"amount"`
}

// BackgroundColor is either a solid hex color or a list of gradient stops.
// On the wire it is a JSON string or a JSON array.
type BackgroundColor struct {
	Solid    string
	Gradient []GradientStop
}

func (b BackgroundColor) IsGradient() bool { return b.Gradient != nil }

func (b BackgroundColor) MarshalJSON() ([]byte, error) {
	if b.Gradient != nil {
		return json.Marshal(b.Gradient)
	}
	return json.Marshal(b.Solid)
}

func (b *BackgroundColor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("backgroundColor: empty value")
	}
	switch data[0] {
	case '"':
		b.Gradient = nil
		return json.Unmarshal(data, &b.Solid)
	case '[':
		b.Solid = ""
		stops := []GradientStop{}
		if err := json.Unmarshal(data, &stops); err != nil {
			return err
		}
		b.Gradient = stops
		return nil
	default:
		return errors.New("backgroundColor must be a color string or a list of gradient stops")
	}
}
