package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newColorLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true // keep assertions free of escape codes
	var buf bytes.Buffer
	l := slog.New(NewColorHandler(&buf, slog.LevelDebug))
	return NewSlogLogger(l), &buf
}

func TestColorHandler_WritesLevelsAndAttrs(t *testing.T) {
	log, buf := newColorLogger(t)
	ctx := context.Background()

	log.Info(ctx, "hello", "user", "alice")
	log.Warn(ctx, "careful", "n", 2)
	log.Error(ctx, "boom")

	out := buf.String()
	for _, want := range []string{"[INFO] hello user=alice", "[WARN] careful n=2", "[ERROR] boom"} {
		assert.Contains(t, out, want)
	}
}

func TestColorHandler_WithCarriesAttrs(t *testing.T) {
	log, buf := newColorLogger(t)

	log2 := log.With("module", "web")
	log2.Info(context.Background(), "request", "path", "/login.html")

	out := buf.String()
	assert.Contains(t, out, "module=web")
	assert.Contains(t, out, "path=/login.html")
}

func TestColorHandler_RespectsMinLevel(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := slog.New(NewColorHandler(&buf, slog.LevelWarn))

	l.Info("quiet")
	l.Warn("loud")

	out := buf.String()
	require.NotContains(t, out, "quiet")
	assert.True(t, strings.Contains(out, "loud"))
}
