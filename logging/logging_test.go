package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "INFO", Writer: buf})
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("route", "/").Msg("served")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "served", entry["message"])
	require.Equal(t, "/", entry["route"])
	require.Equal(t, "info", entry["level"])
	require.Contains(t, entry, "time")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}

func TestNewHumanReadable(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{HumanReadable: true, Writer: buf})
	require.NoError(t, err)
	log.Warn().Msg("careful")

	require.Contains(t, buf.String(), "careful")
	require.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestInto(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Writer: buf})
	require.NoError(t, err)

	ctx := Into(context.Background(), log, map[string]any{"request_id": "abc"})
	zerolog.Ctx(ctx).Info().Msg("hello")

	require.Contains(t, buf.String(), `"request_id":"abc"`)
}
