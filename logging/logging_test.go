package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestHandler(t *testing.T) {
	var b bytes.Buffer
	log := slog.New(Handler(&b, "warn", "json"))
	log.Info("hidden")
	log.Warn("styles reused", "track", "day 8")

	assert.NotContains(t, b.String(), "hidden")
	assert.Equal(t, "WARN", gjson.Get(b.String(), "level").String())
	assert.Equal(t, "day 8", gjson.Get(b.String(), "track").String())

	b.Reset()
	h := Handler(&b, "", "")
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	slog.New(h).Info("converted", "tracks", 2)
	assert.Contains(t, b.String(), "msg=converted tracks=2")
}

func TestSetup(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var b bytes.Buffer
	Setup(&b, "DEBUG", "text")
	slog.Debug("dropped points", "count", 3)
	assert.Contains(t, b.String(), "level=DEBUG msg=\"dropped points\" count=3")
}
