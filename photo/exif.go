package photo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

// TagReader reads the metadata of one image.
type TagReader interface {
	ReadTags(name string, r io.Reader) (Tags, error)
}

// ExifReader reads tags with goexif. GPS rationals are rendered the way
// exiftool prints them so both sources parse the same.
type ExifReader struct{}

var registerParsers sync.Once

func (ExifReader) ReadTags(name string, r io.Reader) (Tags, error) {
	registerParsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	r, err := exifStream(r)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}

	x, err := exif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding exif for %q: %w", name, err)
	}

	tags := Tags{FileName: name}
	for _, f := range []exif.FieldName{exif.GPSLatitude, exif.GPSLongitude} {
		if dms, ok := rationalDMS(x, f); ok {
			tags[string(f)] = dms
		}
	}
	for _, f := range []exif.FieldName{exif.GPSLatitudeRef, exif.GPSLongitudeRef, exif.Model, exif.DateTimeOriginal} {
		tag, err := x.Get(f)
		if err != nil {
			continue
		}
		if s, err := tag.StringVal(); err == nil {
			tags[string(f)] = strings.TrimRight(s, "\x00 ")
		}
	}
	return tags, nil
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// exifStream returns the raw TIFF payload of the eXIf chunk when r is a PNG.
// Anything else is passed through for exif.Decode, which handles JPEG APP1
// segments and bare TIFF data itself.
func exifStream(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	sig, err := br.Peek(len(pngSignature))
	if err != nil || !bytes.Equal(sig, pngSignature) {
		return br, nil
	}
	if _, err := br.Discard(len(pngSignature)); err != nil {
		return nil, err
	}

	// chunk: length, type, data, crc
	var header [8]byte
	for {
		if _, err := io.ReadFull(br, header[:]); err != nil {
			return nil, fmt.Errorf("reading png chunk: %w", err)
		}
		length := binary.BigEndian.Uint32(header[:4])
		if length > 1<<31-1 {
			return nil, fmt.Errorf("png chunk %q too long", header[4:])
		}
		switch string(header[4:]) {
		case "eXIf":
			data, err := io.ReadAll(io.LimitReader(br, int64(length)))
			if err != nil {
				return nil, fmt.Errorf("reading png eXIf chunk: %w", err)
			}
			if len(data) != int(length) {
				return nil, fmt.Errorf("reading png eXIf chunk: %w", io.ErrUnexpectedEOF)
			}
			return bytes.NewReader(data), nil
		case "IEND":
			return nil, fmt.Errorf("%w: png has no eXIf chunk", ErrNoGeotag)
		}
		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return nil, fmt.Errorf("reading png chunk %q: %w", header[4:], err)
		}
	}
}

func rationalDMS(x *exif.Exif, f exif.FieldName) (string, bool) {
	tag, err := x.Get(f)
	if err != nil {
		return "", false
	}
	var parts [3]float64
	for i := range parts {
		r, err := tag.Rat(i)
		if err != nil {
			return "", false
		}
		parts[i], _ = r.Float64()
	}
	return FormatDMS(parts[0] + parts[1]/60 + parts[2]/3600), true
}

// FormatDMS renders decimal degrees as `D deg M' S.ss"`. The sign is dropped,
// hemisphere lives in the reference tag.
func FormatDMS(decimal float64) string {
	decimal = math.Abs(decimal)
	hundredths := int64(math.Round(decimal * 3600 * 100))
	degrees := hundredths / (3600 * 100)
	hundredths -= degrees * 3600 * 100
	minutes := hundredths / (60 * 100)
	hundredths -= minutes * 60 * 100
	return fmt.Sprintf(`%d deg %d' %d.%02d"`, degrees, minutes, hundredths/100, hundredths%100)
}
