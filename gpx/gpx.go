package gpx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/dave/gpx2kml/geo"
	"golang.org/x/net/html/charset"
)

// ErrParse is returned when a GPX document is not well formed or has no track.
var ErrParse = errors.New("malformed gpx")

// Track is one recorded track, ready for simplification.
type Track struct {
	Title       string
	Description string
	Points      []TrackPoint
	Dropped     int // invalid points removed while reading
}

// Line returns the track positions in order.
func (t *Track) Line() geo.Line {
	line := make(geo.Line, len(t.Points))
	for i, p := range t.Points {
		line[i] = p.Pos
	}
	return line
}

func Load(fpath string) (*Track, error) {
	b, err := ioutil.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("reading gpx %q: %w", fpath, err)
	}
	t, err := Decode(bytes.NewBuffer(b))
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", fpath, err)
	}
	return t, nil
}

// Decode reads every track point of every trk/trkseg in the document.
// Namespaces are ignored so GPX 1.0 and 1.1 both decode.
func Decode(reader io.Reader) (*Track, error) {
	var r root
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	if err := d.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decoding gpx: %v", ErrParse, err)
	}
	if len(r.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no trk element", ErrParse)
	}

	var raw []RawPoint
	for _, track := range r.Tracks {
		for _, seg := range track.Segments {
			raw = append(raw, seg.Points...)
		}
	}
	points, dropped := FilterAndOrder(raw)

	t := &Track{
		Title:       r.Tracks[0].Name,
		Description: r.Tracks[0].Desc,
		Points:      points,
		Dropped:     dropped,
	}
	if r.Metadata != nil {
		if t.Title == "" {
			t.Title = r.Metadata.Name
		}
		if t.Description == "" {
			t.Description = r.Metadata.Desc
		}
	}
	return t, nil
}

type root struct {
	XMLName  xml.Name  `xml:"gpx"`
	Metadata *metadata `xml:"metadata"`
	Tracks   []trk     `xml:"trk"`
}

type metadata struct {
	Name string `xml:"name"`
	Desc string `xml:"desc"`
}

type trk struct {
	Name     string   `xml:"name"`
	Desc     string   `xml:"desc"`
	Segments []trkseg `xml:"trkseg"`
}

type trkseg struct {
	Points []RawPoint `xml:"trkpt"`
}

// RawPoint is a trkpt as found in the file. Absent values are nil.
type RawPoint struct {
	Lat  *string `xml:"lat,attr"`
	Lon  *string `xml:"lon,attr"`
	Ele  *string `xml:"ele"`
	Time *string `xml:"time"`
}
