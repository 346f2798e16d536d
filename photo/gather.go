package photo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// Extensions of the files considered photos, compared case-insensitively.
var Extensions = []string{".jpg", ".png"}

// OpenBucket opens a local directory, or any gocloud.dev blob URL when uri
// has a scheme. A missing directory is reported as fs.ErrNotExist.
func OpenBucket(ctx context.Context, uri string) (*blob.Bucket, error) {
	if strings.Contains(uri, "://") {
		bucket, err := blob.OpenBucket(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("opening photo bucket %q: %w", uri, err)
		}
		return bucket, nil
	}
	dir, err := filepath.Abs(uri)
	if err != nil {
		return nil, fmt.Errorf("resolving photo dir %q: %w", uri, err)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("opening photo dir %q: %w", dir, err)
	}
	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("opening photo dir %q: %w", dir, err)
	}
	return bucket, nil
}

// ListImages returns the photo keys at the top level of the bucket, sorted.
func ListImages(ctx context.Context, bucket *blob.Bucket) ([]string, error) {
	var keys []string
	iter := bucket.List(&blob.ListOptions{Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing photos: %w", err)
		}
		if obj.IsDir || !isImage(obj.Key) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func isImage(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

type GatherOptions struct {
	Reader  TagReader
	Workers int
	// Progress is called once per photo, from the worker goroutines.
	Progress func(key string)
}

type GatherResult struct {
	Placemarks []Placemark
	Skipped    []string // keys without a usable geotag or unreadable
}

// Gather extracts placemarks for every photo in the bucket. Photos that
// can't be read or have no geotag are skipped. Placemarks keep the sorted
// key order regardless of worker scheduling.
func Gather(ctx context.Context, bucket *blob.Bucket, opts *GatherOptions) (*GatherResult, error) {
	keys, err := ListImages(ctx, bucket)
	if err != nil {
		return nil, err
	}

	reader := opts.Reader
	if reader == nil {
		reader = ExifReader{}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	found := make([]*Placemark, len(keys))
	sem := make(chan struct{}, workers)
	wg := new(sync.WaitGroup)

	for i, key := range keys {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, key string) {
			defer wg.Done()
			defer func() { <-sem }()

			p, err := readPlacemark(ctx, bucket, reader, key)
			if err != nil {
				slog.Debug("skipping photo", "key", key, "err", err)
			} else {
				found[i] = &p
			}
			if opts.Progress != nil {
				opts.Progress(key)
			}
		}(i, key)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rsp := &GatherResult{}
	for i, p := range found {
		if p == nil {
			rsp.Skipped = append(rsp.Skipped, keys[i])
			continue
		}
		rsp.Placemarks = append(rsp.Placemarks, *p)
	}
	return rsp, nil
}

func readPlacemark(ctx context.Context, bucket *blob.Bucket, reader TagReader, key string) (Placemark, error) {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return Placemark{}, fmt.Errorf("opening %q: %w", key, err)
	}
	defer r.Close()

	tags, err := reader.ReadTags(path.Base(key), r)
	if err != nil {
		return Placemark{}, err
	}
	p, ok := Extract(tags)
	if !ok {
		return Placemark{}, ErrNoGeotag
	}
	return p, nil
}
