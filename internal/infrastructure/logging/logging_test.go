package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Format: "json", Output: &buf})

	l.Info("hidden")
	l.WithField("application_number", "CC2026101500001").Warn("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "CC2026101500001", line["application_number"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	l := New(Options{Level: "loud"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Output: &buf})
	e := l.WithField("request_id", "req-1")

	ctx := WithEntry(context.Background(), e)
	assert.Same(t, e, FromContext(ctx))

	fallback := FromContext(context.Background())
	assert.NotNil(t, fallback)
	assert.Empty(t, fallback.Data)
}
