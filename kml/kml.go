package kml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dave/gpx2kml/geo"
)

const (
	Namespace     = "http://www.opengis.net/kml/2.2"
	NamespaceGx   = "http://www.google.com/kml/ext/2.2"
	NamespaceAtom = "http://www.w3.org/2005/Atom"
)

type Root struct {
	XMLName   xml.Name `xml:"kml"`
	Xmlns     string   `xml:"xmlns,attr"`
	XmlnsGx   string   `xml:"xmlns:gx,attr,omitempty"`
	XmlnsKml  string   `xml:"xmlns:kml,attr,omitempty"`
	XmlnsAtom string   `xml:"xmlns:atom,attr,omitempty"`
	Document  Document `xml:"Document"`
}

func NewRoot(doc Document) *Root {
	return &Root{
		Xmlns:     Namespace,
		XmlnsGx:   NamespaceGx,
		XmlnsKml:  Namespace,
		XmlnsAtom: NamespaceAtom,
		Document:  doc,
	}
}

// Encode writes the xml header and the indented document.
func (r *Root) Encode(w io.Writer) error {
	bw, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling kml: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing kml: %w", err)
	}
	if _, err := w.Write(append(bw, '\n')); err != nil {
		return fmt.Errorf("writing kml: %w", err)
	}
	return nil
}

func (r *Root) Text() (string, error) {
	var b bytes.Buffer
	if err := r.Encode(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Save writes to a temp file next to fpath and renames it into place, so a
// failed run never leaves a partial document behind.
func (r *Root) Save(fpath string) error {
	var b bytes.Buffer
	if err := r.Encode(&b); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(filepath.Dir(fpath), filepath.Base(fpath)+".*.part")
	if err != nil {
		return fmt.Errorf("creating kml file %q: %w", fpath, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing kml file %q: %w", fpath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing kml file %q: %w", fpath, err)
	}
	if err := os.Chmod(tmp.Name(), 0666); err != nil {
		return fmt.Errorf("writing kml file %q: %w", fpath, err)
	}
	if err := os.Rename(tmp.Name(), fpath); err != nil {
		return fmt.Errorf("writing kml file %q: %w", fpath, err)
	}
	return nil
}

func Decode(reader io.Reader) (*Root, error) {
	var r Root
	if err := xml.NewDecoder(reader).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding kml: %w", err)
	}
	return &r, nil
}

type Document struct {
	Name        string    `xml:"name"`
	Description CDATA     `xml:"description"`
	Visibility  int       `xml:"visibility"`
	Open        int       `xml:"open"`
	Styles      []*Style  `xml:"Style"`
	Folders     []*Folder `xml:"Folder"`
}

// CDATA is text emitted in a CDATA section, for html descriptions.
type CDATA struct {
	Text string `xml:",cdata"`
}

type Style struct {
	Id        string    `xml:"id,attr,omitempty"`
	LineStyle LineStyle `xml:"LineStyle"`
}

type LineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width,omitempty"`
}

type Folder struct {
	Name        string       `xml:"name"`
	Description string       `xml:"description"`
	Visibility  int          `xml:"visibility"`
	Open        int          `xml:"open"`
	Placemarks  []*Placemark `xml:"Placemark"`
}

type Placemark struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	Visibility  *int        `xml:"visibility,omitempty"`
	Open        *int        `xml:"open,omitempty"`
	StyleUrl    string      `xml:"styleUrl,omitempty"`
	Point       *Point      `xml:"Point,omitempty"`
	LineString  *LineString `xml:"LineString,omitempty"`
}

type Point struct {
	Coordinates string `xml:"coordinates"`
}

type LineString struct {
	Extrude      bool   `xml:"extrude"`
	Tessellate   bool   `xml:"tessellate"`
	AltitudeMode string `xml:"altitudeMode"`
	Coordinates  string `xml:"coordinates"`
}

func LineCoordinates(line geo.Line) string {
	var sb strings.Builder
	for i, pos := range line {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(PosCoordinates(pos))
	}
	return sb.String()
}

func PosCoordinates(pos geo.Pos) string {
	return num(pos.Lon) + "," + num(pos.Lat) + "," + num(pos.Ele)
}

// PointCoordinates is a lon,lat pair without elevation.
func PointCoordinates(lon, lat float64) string {
	return num(lon) + "," + num(lat)
}

// num never uses exponent notation, small offsets near 0,0 stay readable.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func flag(v int) *int {
	return &v
}
