package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dave/gpx2kml/config"
	"github.com/dave/gpx2kml/elevation"
	"github.com/dave/gpx2kml/gpx"
	"github.com/dave/gpx2kml/kml"
	"github.com/dave/gpx2kml/photo"
	"github.com/schollz/progressbar/v3"
)

// tagReader reads photo metadata during Convert.
var tagReader photo.TagReader = photo.ExifReader{}

// Convert reads every track and photo named by cfg and writes one KML
// document. Any unreadable track aborts the run before the output is
// touched. Photos without a usable geotag are skipped.
func Convert(ctx context.Context, cfg *config.Config) (*Summary, error) {
	var progress io.Writer = os.Stderr
	if cfg.Quiet {
		progress = io.Discard
	}

	summary := &Summary{Output: cfg.Output}

	tracks, err := loadTracks(cfg.Tracks, progress)
	if err != nil {
		return nil, err
	}

	if cfg.Elevation {
		filler, err := elevation.NewFiller(http.DefaultClient)
		if err != nil {
			return nil, err
		}
		if summary.Elevations, err = filler.Fill(ctx, tracks); err != nil {
			return nil, fmt.Errorf("filling elevations: %w", err)
		}
	}

	var photos []photo.Placemark
	if cfg.Photos != "" {
		gathered, err := gatherPhotos(ctx, cfg.Photos, cfg.Workers, progress)
		if err != nil {
			return nil, err
		}
		photos = gathered.Placemarks
		summary.Photos = len(gathered.Placemarks)
		summary.Skipped = gathered.Skipped
	}

	palette := kml.DefaultPalette()
	palette.Strict = cfg.StrictStyles
	builder := &kml.Builder{Palette: palette, StripHTML: cfg.StripHTML}

	root, err := builder.Build(tracks, photos, cfg.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("building kml: %w", err)
	}

	if err := root.Save(cfg.Output); err != nil {
		return nil, err
	}

	placemarks := root.Document.Folders[0].Placemarks
	for i, t := range tracks {
		summary.Tracks = append(summary.Tracks, TrackSummary{
			File:     cfg.Tracks[i],
			Title:    t.Title,
			Points:   len(t.Points),
			Dropped:  t.Dropped,
			Kept:     len(strings.Fields(placemarks[i].LineString.Coordinates)),
			LengthKm: t.Line().Length(),
		})
	}

	slog.Info("converted", "tracks", len(tracks), "photos", summary.Photos, "output", cfg.Output)
	return summary, nil
}

func loadTracks(files []string, progress io.Writer) ([]*gpx.Track, error) {
	bar := newBar(len(files), "[GPX] reading", progress)
	defer bar.Finish()

	var tracks []*gpx.Track
	for _, fpath := range files {
		t, err := gpx.Load(fpath)
		if err != nil {
			return nil, err
		}
		if t.Dropped > 0 {
			slog.Debug("dropped points", "file", filepath.Base(fpath), "count", t.Dropped)
		}
		tracks = append(tracks, t)
		_ = bar.Add(1)
	}
	return tracks, nil
}

func gatherPhotos(ctx context.Context, uri string, workers int, progress io.Writer) (*photo.GatherResult, error) {
	bucket, err := photo.OpenBucket(ctx, uri)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("photo dir not found, no photos added", "photos", uri)
		return &photo.GatherResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer bucket.Close()

	bar := newBar(-1, "[IMG] reading", progress)
	defer bar.Finish()

	rsp, err := photo.Gather(ctx, bucket, &photo.GatherOptions{
		Reader:   tagReader,
		Workers:  workers,
		Progress: func(string) { _ = bar.Add(1) },
	})
	if err != nil {
		return nil, fmt.Errorf("gathering photos from %q: %w", uri, err)
	}
	for _, key := range rsp.Skipped {
		slog.Warn("photo has no usable geotag", "key", key)
	}
	return rsp, nil
}

func newBar(total int, description string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}
