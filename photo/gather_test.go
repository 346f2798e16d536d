package photo

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

// lineReader reads "Tag=Value" lines instead of real EXIF.
type lineReader struct{}

func (lineReader) ReadTags(name string, r io.Reader) (Tags, error) {
	tags := Tags{FileName: name}
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if line == "broken" {
			return nil, errors.New("corrupt image")
		}
		if k, v, ok := strings.Cut(line, "="); ok {
			tags[k] = v
		}
	}
	return tags, s.Err()
}

func newBucket(t *testing.T, files map[string]string) *blob.Bucket {
	t.Helper()
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })
	for key, content := range files {
		require.NoError(t, bucket.WriteAll(ctx, key, []byte(content), nil))
	}
	return bucket
}

func geotag(lat, lon string) string {
	return "GPSLatitude=" + lat + "\nGPSLongitude=" + lon + "\nGPSLatitudeRef=N\nGPSLongitudeRef=E\nModel=Pixel 4\n"
}

func TestListImages(t *testing.T) {
	bucket := newBucket(t, map[string]string{
		"b.JPG":      "",
		"a.jpg":      "",
		"c.Png":      "",
		"notes.txt":  "",
		"movie.mp4":  "",
		"jpg":        "",
		"sub/d.jpg":  "",
		"e.jpeg.bak": "",
	})

	keys, err := ListImages(context.Background(), bucket)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.JPG", "c.Png"}, keys)
}

func TestGather(t *testing.T) {
	bucket := newBucket(t, map[string]string{
		"03.jpg":    geotag(`10 deg 0' 0.00"`, `30 deg 0' 0.00"`),
		"01.jpg":    geotag(`10 deg 0' 0.00"`, `10 deg 0' 0.00"`),
		"02.png":    "Model=No GPS\n",
		"04.jpg":    "broken",
		"05.PNG":    geotag(`10 deg 0' 0.00"`, `50 deg 0' 0.00"`),
		"readme.md": geotag(`1 deg 0' 0.00"`, `1 deg 0' 0.00"`),
	})

	var calls atomic.Int32
	rsp, err := Gather(context.Background(), bucket, &GatherOptions{
		Reader:   lineReader{},
		Workers:  3,
		Progress: func(string) { calls.Add(1) },
	})
	require.NoError(t, err)

	var names []string
	var lons []float64
	for _, p := range rsp.Placemarks {
		names = append(names, p.Name)
		lons = append(lons, p.Lon)
		assert.Equal(t, "Pixel 4", p.Camera)
	}
	assert.Equal(t, []string{"01.jpg", "03.jpg", "05.PNG"}, names)
	assert.Equal(t, []float64{10, 30, 50}, lons)
	assert.Equal(t, []string{"02.png", "04.jpg"}, rsp.Skipped)
	assert.Equal(t, int32(5), calls.Load())
}

func TestGatherDefaultReaderSkipsNonExif(t *testing.T) {
	bucket := newBucket(t, map[string]string{
		"a.jpg": "not really a jpeg",
		"b.png": "\x89PNG\r\n",
	})

	rsp, err := Gather(context.Background(), bucket, &GatherOptions{})
	require.NoError(t, err)
	assert.Empty(t, rsp.Placemarks)
	assert.Equal(t, []string{"a.jpg", "b.png"}, rsp.Skipped)
}

func TestGatherEmptyBucket(t *testing.T) {
	rsp, err := Gather(context.Background(), newBucket(t, nil), &GatherOptions{Reader: lineReader{}})
	require.NoError(t, err)
	assert.Empty(t, rsp.Placemarks)
	assert.Empty(t, rsp.Skipped)
}

func TestGatherCancelled(t *testing.T) {
	bucket := newBucket(t, map[string]string{"a.jpg": geotag(`1 deg 0' 0.00"`, `1 deg 0' 0.00"`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Gather(ctx, bucket, &GatherOptions{Reader: lineReader{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenBucketDir(t *testing.T) {
	dir := t.TempDir()
	bucket, err := OpenBucket(context.Background(), dir)
	require.NoError(t, err)
	defer bucket.Close()

	keys, err := ListImages(context.Background(), bucket)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = OpenBucket(context.Background(), "nosuchscheme://bucket")
	assert.Error(t, err)

	_, err = OpenBucket(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
