package main

import (
	"fmt"
	"math"
	"os"

	"github.com/tidwall/sjson"
)

// Summary describes a finished conversion run.
type Summary struct {
	Output     string
	Tracks     []TrackSummary
	Elevations int // points given an SRTM elevation
	Photos     int
	Skipped    []string
}

type TrackSummary struct {
	File     string
	Title    string
	Points   int
	Dropped  int
	Kept     int // after simplification
	LengthKm float64
}

func (s *Summary) JSON() ([]byte, error) {
	body := []byte(`{}`)

	set := func(path string, value interface{}) error {
		var err error
		body, err = sjson.SetBytes(body, path, value)
		if err != nil {
			return fmt.Errorf("failed to assign %s: %w", path, err)
		}
		return nil
	}

	updates := map[string]interface{}{
		"output":         s.Output,
		"elevations":     s.Elevations,
		"photos.placed":  s.Photos,
		"photos.skipped": nonNil(s.Skipped),
		"tracks":         []interface{}{},
	}
	for path, value := range updates {
		if err := set(path, value); err != nil {
			return nil, err
		}
	}

	for _, t := range s.Tracks {
		track := map[string]interface{}{
			"file":      t.File,
			"title":     t.Title,
			"points":    t.Points,
			"dropped":   t.Dropped,
			"kept":      t.Kept,
			"length_km": math.Round(t.LengthKm*1000) / 1000,
		}
		if err := set("tracks.-1", track); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (s *Summary) Save(fpath string) error {
	body, err := s.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(fpath, body, 0666); err != nil {
		return fmt.Errorf("writing summary %q: %w", fpath, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
