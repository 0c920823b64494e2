package domain

import "math"

// HueSaturation is the colour argument of a setColor command. Both values are
// on a 0-100 scale; brightness is controlled separately by the device.
type HueSaturation struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
}

// ToHueSaturation converts an 8-bit RGB triple to hue and saturation scaled
// to 0-100. Channels are not clamped, so out-of-range input extrapolates.
func ToHueSaturation(r, g, b int) (hue, saturation float64) {
	rf, gf, bf := float64(r)/255.0, float64(g)/255.0, float64(b)/255.0

	maxc := math.Max(rf, math.Max(gf, bf))
	minc := math.Min(rf, math.Min(gf, bf))
	if maxc == minc {
		return 0, 0
	}

	span := maxc - minc
	saturation = span / maxc

	rc := (maxc - rf) / span
	gc := (maxc - gf) / span
	bc := (maxc - bf) / span

	var h float64
	switch maxc {
	case rf:
		h = bc - gc
	case gf:
		h = 2.0 + rc - bc
	default:
		h = 4.0 + gc - rc
	}

	// floored modulo keeps the fraction in [0,1)
	h = math.Mod(h/6.0, 1.0)
	if h < 0 {
		h += 1.0
	}

	return h * 100, saturation * 100
}
