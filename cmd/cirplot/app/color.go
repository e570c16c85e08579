package app

import (
	"image/color"
	"math"
)

// ColorTheme selects a color scheme for the magnitude scale.
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // black to white transition
	ThermalTheme   ColorTheme = "thermal"   // black to red to yellow to white

	defaultColorMapSize = 256
)

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	ThermalTheme:   {},
}

// ColorMapper precomputes a magnitude-to-color lookup table for a theme and
// a dB range.
type ColorMapper struct {
	colorMap    []color.Color
	theme       func(float64) color.Color
	boundsMin   float64
	dbPerIndex  float64
	boundsRange float64
}

// NewColorMapper creates a mapper for the theme over the given bounds.
func NewColorMapper(theme ColorTheme, bounds MagnitudeBounds) *ColorMapper {
	cm := &ColorMapper{
		colorMap: make([]color.Color, defaultColorMapSize),
		theme:    getColorTheme(theme),
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds rescales the map to a new dB range.
func (cm *ColorMapper) UpdateBounds(bounds MagnitudeBounds) {
	cm.boundsMin = bounds.Min
	cm.boundsRange = bounds.Max - bounds.Min
	if cm.boundsRange <= 0 {
		cm.boundsRange = 1 // degenerate range, everything maps to the floor color
	}
	cm.dbPerIndex = cm.boundsRange / float64(len(cm.colorMap)-1)

	for i := range cm.colorMap {
		normalized := float64(i) / float64(len(cm.colorMap)-1)
		cm.colorMap[i] = cm.theme(normalized)
	}
}

// GetColor returns the color for a magnitude in dB, clamped to the bounds.
func (cm *ColorMapper) GetColor(db float64) color.Color {
	index := int((db - cm.boundsMin) / cm.dbPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= len(cm.colorMap) {
		return cm.colorMap[len(cm.colorMap)-1]
	}
	return cm.colorMap[index]
}

func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(v float64) color.Color {
			g := uint8(v * 255)
			return color.RGBA{R: g, G: g, B: g, A: 0xff}
		}

	case ThermalTheme:
		return func(v float64) color.Color {
			switch {
			case v < 0.33:
				return hsvToRGB(HSV{H: 0, S: 1, V: v * 3})
			case v < 0.66:
				return hsvToRGB(HSV{H: (v - 0.33) * 180, S: 1, V: 1})
			default:
				return hsvToRGB(HSV{H: 60, S: 1 - (v-0.66)*3, V: 1})
			}
		}

	default: // classic
		return func(v float64) color.Color {
			hsv := HSV{
				H: 240 - (v * 240),      // blue to red
				S: 0.9 + (v * 0.1),      // slightly more saturated with power
				V: math.Pow(v, 0.7),     // gamma correction for perception
			}
			return hsvToRGB(hsv)
		}
	}
}

// HSV represents a color in HSV color space.
// H: [0-360], S: [0-1], V: [0-1]
type HSV struct {
	H float64
	S float64
	V float64
}

func hsvToRGB(hsv HSV) color.Color {
	h := hsv.H
	s := hsv.S
	v := hsv.V

	if s <= 0.0 {
		rgb := uint8(v * 255)
		return color.RGBA{R: rgb, G: rgb, B: rgb, A: 0xff}
	}

	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64

	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}
