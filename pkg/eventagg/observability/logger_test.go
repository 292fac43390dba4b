package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *testHandler) WithGroup(string) slog.Handler { return h }

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func TestLogListenerAdded(t *testing.T) {
	h := newTestHandler()
	LogListenerAdded(slog.New(h), "id-1", "*orders.Projector", "weak", 2)

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "listener added", record["msg"])
	assert.Equal(t, "id-1", record["listener_id"])
	assert.Equal(t, "*orders.Projector", record["listener_type"])
	assert.Equal(t, "weak", record["ownership"])
	assert.Equal(t, float64(2), record["contracts"]) // JSON decodes ints as float64
}

func TestLogListenerRemovedAndPruned(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	LogListenerRemoved(logger, "id-1", "*orders.Projector")
	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "listener removed", record["msg"])
	assert.Equal(t, "id-1", record["listener_id"])

	LogListenerPruned(logger, "id-2", "*orders.Audit")
	record = h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "listener pruned", record["msg"])
	assert.Equal(t, "*orders.Audit", record["listener_type"])
}

func TestLogUnhandled(t *testing.T) {
	h := newTestHandler()
	LogUnhandled(slog.New(h), "orders.Shipped")

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "message had no listeners", record["msg"])
	assert.Equal(t, "orders.Shipped", record["message_type"])
}

func TestLogDeadLetterError(t *testing.T) {
	h := newTestHandler()
	LogDeadLetterError(slog.New(h), "orders.Shipped", errors.New("disk full"))

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "disk full", record["error"])
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogListenerAdded(nil, "id", "T", "strong", 1)
		LogListenerRemoved(nil, "id", "T")
		LogListenerPruned(nil, "id", "T")
		LogUnhandled(nil, "M")
		LogDeadLetterError(nil, "M", errors.New("x"))
	})
}

func TestLogHelpers_RespectLevel(t *testing.T) {
	h := newTestHandler()
	h.level = slog.LevelInfo
	LogListenerAdded(slog.New(h), "id", "T", "weak", 1)

	assert.Empty(t, h.buf.String(), "debug records should be filtered at info level")
}
