package kml

import (
	"errors"
	"fmt"
)

// ErrStyleCatalogExhausted is returned by a strict Palette when there are
// more tracks than styles.
var ErrStyleCatalogExhausted = errors.New("more tracks than line styles")

// Colors are aabbggrr, width 4 for all of them.
var Colors = []struct{ Name, Color string }{
	{"red", "C81400FF"},
	{"blue", "C8FF7800"},
	{"pink", "96F0FF14"},
	{"green", "C878FF00"},
	{"orange", "C81478FF"},
	{"dark_green", "96008C14"},
	{"pink2", "C8A078F0"},
}

// Palette hands out one line style per track by position. Past the end it
// wraps around, unless Strict is set.
type Palette struct {
	Styles []*Style
	Strict bool
}

func DefaultPalette() *Palette {
	p := &Palette{}
	for _, c := range Colors {
		p.Styles = append(p.Styles, &Style{
			Id: c.Name,
			LineStyle: LineStyle{
				Color: c.Color,
				Width: 4,
			},
		})
	}
	return p
}

// At returns the style for the track at index i.
func (p *Palette) At(i int) (*Style, error) {
	if len(p.Styles) == 0 || i < 0 {
		return nil, fmt.Errorf("%w: no style for track %d", ErrStyleCatalogExhausted, i)
	}
	if i >= len(p.Styles) {
		if p.Strict {
			return nil, fmt.Errorf("%w: track %d, %d styles", ErrStyleCatalogExhausted, i+1, len(p.Styles))
		}
		i %= len(p.Styles)
	}
	return p.Styles[i], nil
}
