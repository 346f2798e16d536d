package kml

import (
	"fmt"
	"log/slog"

	"github.com/dave/gpx2kml/geo"
	"github.com/dave/gpx2kml/gpx"
	"github.com/dave/gpx2kml/photo"
)

const (
	DocumentName = "Converted from GPX file"
	Attribution  = "<p>Converted using <b><a href='http://github.com/shakaman/gpx2kml' title='Go to gpx2kml on github'>Github</a></b></p>"

	DefaultTolerance = 30e-5
)

// Builder assembles the output document: one styled line per track and one
// point per geotagged photo, inside a "Tracks" folder.
type Builder struct {
	Palette     *Palette // DefaultPalette when nil
	Attribution string   // Attribution when empty
	StripHTML   bool     // render track descriptions as plain text
}

func (b *Builder) Build(tracks []*gpx.Track, photos []photo.Placemark, tolerance float64) (*Root, error) {
	palette := b.Palette
	if palette == nil {
		palette = DefaultPalette()
	}
	attribution := b.Attribution
	if attribution == "" {
		attribution = Attribution
	}

	folder := &Folder{
		Name:        "Tracks",
		Description: "A list of tracks",
		Visibility:  1,
		Open:        0,
	}

	for i, t := range tracks {
		style, err := palette.At(i)
		if err != nil {
			return nil, fmt.Errorf("styling track %q: %w", t.Title, err)
		}
		if i >= len(palette.Styles) {
			slog.Warn("reusing line style", "track", t.Title, "style", style.Id)
		}

		line := geo.Simplify(t.Line(), tolerance)
		slog.Debug("simplified track", "track", t.Title, "points", len(t.Points), "kept", len(line))

		desc := t.Description
		if b.StripHTML {
			desc = PlainText(desc)
		}
		folder.Placemarks = append(folder.Placemarks, &Placemark{
			Name:        t.Title,
			Description: desc,
			Visibility:  flag(0),
			Open:        flag(0),
			StyleUrl:    "#" + style.Id,
			LineString: &LineString{
				Extrude:      true,
				Tessellate:   true,
				AltitudeMode: "clampToGround",
				Coordinates:  LineCoordinates(line),
			},
		})
	}

	for _, p := range photos {
		folder.Placemarks = append(folder.Placemarks, &Placemark{
			Name:        p.Name,
			Description: p.Camera,
			Point: &Point{
				Coordinates: PointCoordinates(p.Lon, p.Lat),
			},
		})
	}

	return NewRoot(Document{
		Name:        DocumentName,
		Description: CDATA{Text: attribution},
		Visibility:  1,
		Open:        1,
		Styles:      palette.Styles,
		Folders:     []*Folder{folder},
	}), nil
}
