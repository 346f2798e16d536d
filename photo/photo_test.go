package photo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDMS(t *testing.T) {
	testCases := []struct {
		in       string
		expected float64
	}{
		{`45 deg 30' 0.00"`, 45.5},
		{`45 deg 30' 0.00" N`, 45.5},
		{`0 deg 0' 36.00"`, 0.01},
		{`122 deg 25' 9.84"`, 122.4194},
		{`12 15' 0.00"`, 12.25},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDMS(tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}

	for _, bad := range []string{"", "45.5", `45 deg 30'`, `north 30' 1.5"`, `45 deg 30' 12"`} {
		_, err := ParseDMS(bad)
		assert.ErrorIs(t, err, ErrNoGeotag, bad)
	}
}

func TestExtractHemispheres(t *testing.T) {
	base := func(latRef, lonRef string) Tags {
		return Tags{
			GPSLatitude:     `45 deg 30' 0.00"`,
			GPSLongitude:    `6 deg 15' 0.00"`,
			GPSLatitudeRef:  latRef,
			GPSLongitudeRef: lonRef,
			FileName:        "IMG_0001.jpg",
			Model:           "Canon EOS 5D",
		}
	}

	testCases := []struct {
		name           string
		latRef, lonRef string
		lat, lon       float64
	}{
		{"north east", "N", "E", 45.5, 6.25},
		{"south", "S", "E", -45.5, 6.25},
		{"south spelled", "South", "East", -45.5, 6.25},
		{"west spelled", "N", "West", 45.5, -6.25},
		{"west letter", "N", "W", 45.5, -6.25},
		{"lowercase is not a reference", "s", "w", 45.5, 6.25},
		{"missing references", "", "", 45.5, 6.25},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := Extract(base(tc.latRef, tc.lonRef))
			require.True(t, ok)
			assert.InDelta(t, tc.lat, p.Lat, 1e-9)
			assert.InDelta(t, tc.lon, p.Lon, 1e-9)
			assert.Equal(t, "IMG_0001.jpg", p.Name)
			assert.Equal(t, "Canon EOS 5D", p.Camera)
		})
	}
}

func TestExtractWithoutGeotag(t *testing.T) {
	_, ok := Extract(Tags{FileName: "IMG_0002.jpg", Model: "Pixel"})
	assert.False(t, ok)

	_, ok = Extract(Tags{GPSLatitude: `45 deg 30' 0.00"`})
	assert.False(t, ok)

	_, ok = Extract(Tags{GPSLatitude: `45 deg 30' 0.00"`, GPSLongitude: "somewhere"})
	assert.False(t, ok)

	_, _, err := Position(Tags{GPSLongitude: `6 deg 15' 0.00"`})
	assert.ErrorIs(t, err, ErrNoGeotag)
}

func TestExtractDefaults(t *testing.T) {
	p, ok := Extract(Tags{GPSLatitude: `1 deg 0' 0.00"`, GPSLongitude: `2 deg 0' 0.00"`})
	require.True(t, ok)
	assert.Equal(t, Placemark{Lon: 2, Lat: 1}, p)
}

func TestFormatDMS(t *testing.T) {
	assert.Equal(t, `45 deg 30' 0.00"`, FormatDMS(45.5))
	assert.Equal(t, `45 deg 30' 0.00"`, FormatDMS(-45.5))
	assert.Equal(t, `0 deg 0' 36.00"`, FormatDMS(0.01))
	assert.Equal(t, `1 deg 0' 0.00"`, FormatDMS(0.9999999999))

	for _, decimal := range []float64{0, 12.3456, 89.99, 179.123456} {
		got, err := ParseDMS(FormatDMS(decimal))
		require.NoError(t, err)
		// hundredths of an arc second
		assert.InDelta(t, decimal, got, 0.01/3600)
	}
}
