package debug

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	Init(false)
	assert.False(t, Enabled())
	assert.NotPanics(t, func() { Error("dropped") })

	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	assert.True(t, Enabled())

	Debug("hidden")
	Info("shown", "table", "users")
	With("op", "insert").Warn("warned")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown table=users")
	assert.Contains(t, out, "msg=warned op=insert")
}
