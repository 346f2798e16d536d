package elevation

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dave/gpx2kml/geo"
	"github.com/dave/gpx2kml/gpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	calls int
	fail  bool
}

func (f *fakeLookup) GetElevation(client *http.Client, lat, lon float64) (float64, error) {
	f.calls++
	if f.fail {
		return 0, errors.New("srtm tile unavailable")
	}
	return lat*100 + lon, nil
}

func TestFill(t *testing.T) {
	tracks := []*gpx.Track{
		{Title: "one", Points: []gpx.TrackPoint{
			{Pos: geo.Pos{Lat: 1, Lon: 2}},
			{Pos: geo.Pos{Lat: 3, Lon: 4, Ele: 999}, HasEle: true},
			{Pos: geo.Pos{Lat: 1, Lon: 2}},
		}},
		{Title: "two", Points: []gpx.TrackPoint{
			{Pos: geo.Pos{Lat: 5, Lon: 6}},
		}},
	}

	lookup := &fakeLookup{}
	f := &Filler{Lookup: lookup}
	filled, err := f.Fill(context.Background(), tracks)
	require.NoError(t, err)

	assert.Equal(t, 3, filled)
	assert.Equal(t, 2, lookup.calls, "repeated positions are cached")
	assert.Equal(t, 102.0, tracks[0].Points[0].Ele)
	assert.Equal(t, 999.0, tracks[0].Points[1].Ele)
	assert.Equal(t, 102.0, tracks[0].Points[2].Ele)
	assert.Equal(t, 506.0, tracks[1].Points[0].Ele)
	assert.True(t, tracks[1].Points[0].HasEle)
}

func TestFillError(t *testing.T) {
	tracks := []*gpx.Track{{Title: "broken", Points: []gpx.TrackPoint{{Pos: geo.Pos{Lat: 1, Lon: 2}}}}}
	_, err := (&Filler{Lookup: &fakeLookup{fail: true}}).Fill(context.Background(), tracks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestFillCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tracks := []*gpx.Track{{Points: []gpx.TrackPoint{{Pos: geo.Pos{Lat: 1, Lon: 2}}}}}
	_, err := (&Filler{Lookup: &fakeLookup{}}).Fill(ctx, tracks)
	assert.ErrorIs(t, err, context.Canceled)
}
