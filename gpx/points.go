package gpx

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dave/gpx2kml/geo"
)

// ErrTimeFormat is returned by ParseTime for timestamps that are not
// YYYY-MM-DDThh:mm:ssZ.
var ErrTimeFormat = errors.New("unrecognised gpx time")

// TrackPoint is a validated point. A zero Time means the point had no usable
// timestamp.
type TrackPoint struct {
	geo.Pos
	HasEle bool
	Time   time.Time
}

// FilterAndOrder drops points without a numeric lat and lon, then stable
// sorts the rest by time. Points without a timestamp sort first, keeping
// their file order.
func FilterAndOrder(raw []RawPoint) (points []TrackPoint, dropped int) {
	for _, r := range raw {
		if !Valid(r.Lat, r.Lon) {
			dropped++
			continue
		}
		var p TrackPoint
		p.Lat, _ = parseFloat(r.Lat)
		p.Lon, _ = parseFloat(r.Lon)
		if ele, ok := parseFloat(r.Ele); ok {
			p.Ele = ele
			p.HasEle = true
		}
		if r.Time != nil {
			if t, err := ParseTime(*r.Time); err == nil {
				p.Time = t
			}
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, dropped
}

// Valid reports whether both coordinates are present and numeric.
func Valid(lat, lon *string) bool {
	_, latOk := parseFloat(lat)
	_, lonOk := parseFloat(lon)
	return latOk && lonOk
}

var timeRegex = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})T(\d{1,2}):(\d{2}):(\d{2})(?:\.\d+)?Z`)

// ParseTime reads a UTC timestamp and returns it in local time.
func ParseTime(s string) (time.Time, error) {
	matches := timeRegex.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, ErrTimeFormat
	}
	var n [6]int
	for i := range n {
		n[i], _ = strconv.Atoi(matches[i+1])
	}
	year, month, day, hour, minute, second := n[0], n[1], n[2], n[3], n[4], n[5]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, ErrTimeFormat
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalises Feb 31 into March
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, ErrTimeFormat
	}
	return t.Local(), nil
}

func parseFloat(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
