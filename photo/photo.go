// Package photo reads geotags from photographs and turns them into point
// placemarks.
package photo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNoGeotag means a photo has no usable GPS position.
var ErrNoGeotag = errors.New("no geotag")

// Tag names, as exiftool spells them.
const (
	GPSLatitude      = "GPSLatitude"
	GPSLongitude     = "GPSLongitude"
	GPSLatitudeRef   = "GPSLatitudeRef"
	GPSLongitudeRef  = "GPSLongitudeRef"
	FileName         = "FileName"
	Model            = "Model"
	DateTimeOriginal = "DateTimeOriginal"
)

// Tags holds the metadata fields read from one image. Coordinates are
// sexagesimal strings such as `45 deg 30' 12.50"`.
type Tags map[string]string

// Get returns the named tag and whether it is present.
func (t Tags) Get(name string) (string, bool) {
	v, ok := t[name]
	return v, ok
}

// Placemark is a geotagged photo.
type Placemark struct {
	Name   string
	Camera string
	Lon    float64
	Lat    float64
}

// Extract converts the tags of one photo to a placemark. It returns false
// when either coordinate is missing or unparsable.
func Extract(tags Tags) (Placemark, bool) {
	lat, lon, err := Position(tags)
	if err != nil {
		return Placemark{}, false
	}
	name, _ := tags.Get(FileName)
	camera, _ := tags.Get(Model)
	return Placemark{Name: name, Camera: camera, Lon: lon, Lat: lat}, true
}

// Position returns signed decimal degrees for the photo.
func Position(tags Tags) (lat, lon float64, err error) {
	latDMS, ok := tags.Get(GPSLatitude)
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing %s", ErrNoGeotag, GPSLatitude)
	}
	lonDMS, ok := tags.Get(GPSLongitude)
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing %s", ErrNoGeotag, GPSLongitude)
	}
	if lat, err = ParseDMS(latDMS); err != nil {
		return 0, 0, err
	}
	if lon, err = ParseDMS(lonDMS); err != nil {
		return 0, 0, err
	}
	if ref, _ := tags.Get(GPSLatitudeRef); South(ref) {
		lat = -lat
	}
	if ref, _ := tags.Get(GPSLongitudeRef); West(ref) {
		lon = -lon
	}
	return lat, lon, nil
}

// South reports whether a latitude reference flips the sign.
func South(ref string) bool {
	return ref == "S" || ref == "South"
}

// West reports whether a longitude reference flips the sign. Both the EXIF
// letter and the spelled out word written by exiftool are accepted.
func West(ref string) bool {
	return ref == "W" || ref == "West"
}

var dmsRegex = regexp.MustCompile(`(\d+)\s+(?:deg\s+)?(\d+)'\s+(\d+\.\d+)`)

// ParseDMS converts `D deg M' S.ss"` to decimal degrees.
func ParseDMS(s string) (float64, error) {
	matches := dmsRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: unrecognised coordinate %q", ErrNoGeotag, s)
	}
	degrees, _ := strconv.ParseFloat(matches[1], 64)
	minutes, _ := strconv.ParseFloat(matches[2], 64)
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	return degrees + minutes/60 + seconds/3600, nil
}
