package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "production")

	log.Info("dropped")
	log.Warn("kept", "account_id", "a1")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"account_id":"a1"`)
}

func TestNew_DevelopmentUsesText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "development").Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello k=v")
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, FromContext(WithLogger(context.Background(), l)))
}
