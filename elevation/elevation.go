// Package elevation fills in missing track point elevations from SRTM data.
package elevation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dave/gpx2kml/geo"
	"github.com/dave/gpx2kml/gpx"
	"github.com/tkrajina/go-elevations/geoelevations"
)

// Lookup is satisfied by *geoelevations.Srtm.
type Lookup interface {
	GetElevation(client *http.Client, lat, lon float64) (float64, error)
}

type Filler struct {
	Lookup Lookup
	Client *http.Client
	cache  map[geo.Pos]float64
}

// NewFiller downloads SRTM tiles on demand with the given client.
func NewFiller(client *http.Client) (*Filler, error) {
	if client == nil {
		client = http.DefaultClient
	}
	srtm, err := geoelevations.NewSrtm(client)
	if err != nil {
		return nil, fmt.Errorf("creating srtm client: %w", err)
	}
	return &Filler{Lookup: srtm, Client: client}, nil
}

// Fill sets the elevation of every point that had none in the file. Points
// with a recorded elevation are left alone.
func (f *Filler) Fill(ctx context.Context, tracks []*gpx.Track) (filled int, err error) {
	if f.cache == nil {
		f.cache = map[geo.Pos]float64{}
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	for _, t := range tracks {
		for i := range t.Points {
			if t.Points[i].HasEle {
				continue
			}
			if err := ctx.Err(); err != nil {
				return filled, err
			}
			pos := geo.Pos{Lat: t.Points[i].Lat, Lon: t.Points[i].Lon}
			ele, found := f.cache[pos]
			if !found {
				ele, err = f.Lookup.GetElevation(client, pos.Lat, pos.Lon)
				if err != nil {
					return filled, fmt.Errorf("looking up elevation for %q: %w", t.Title, err)
				}
				f.cache[pos] = ele
			}
			t.Points[i].Ele = ele
			t.Points[i].HasEle = true
			filled++
		}
	}
	slog.Debug("filled elevations", "points", filled, "lookups", len(f.cache))
	return filled, nil
}
