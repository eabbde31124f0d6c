package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/assert"
)

func newTestLog() (*Log, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetStdout(buf)
	l.SetStderr(buf)
	return l, buf
}

func TestLevels(t *testing.T) {
	l, buf := newTestLog()

	l.Info("hello")
	l.Debug("hidden")
	assert.That(t, strings.Contains(buf.String(), "I hello"))
	assert.False(t, strings.Contains(buf.String(), "hidden"))

	l.SetLogLevel(LevelDebug)
	assert.Equal(t, l.GetLogLevel(), LevelDebug)
	l.Debugf("shown %d", 2)
	assert.That(t, strings.Contains(buf.String(), "D shown 2"))

	l.SetLogLevel(LevelQuiet)
	buf.Reset()
	l.Err("nothing")
	assert.Equal(t, buf.Len(), 0)
}

func TestNamed(t *testing.T) {
	l, buf := newTestLog()
	child := l.Named("follow").Named("reader")

	child.Info("loaded")
	assert.That(t, strings.Contains(buf.String(), "[follow/reader] loaded"))

	// children share the level of their parent
	l.SetLogLevel(LevelQuiet)
	buf.Reset()
	child.Info("quiet")
	assert.Equal(t, buf.Len(), 0)
}

func TestRotateTo(t *testing.T) {
	l, buf := newTestLog()
	path := filepath.Join(t.TempDir(), "logs", "node.log")

	r, err := l.RotateTo(path)
	assert.NoError(t, err)

	l.Info("to both")
	assert.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.That(t, strings.Contains(string(data), "to both"))
	assert.That(t, strings.Contains(buf.String(), "to both"))
}

func TestDiscard(t *testing.T) {
	DiscardLog.Info("nothing")
	DiscardLog.Named("x").Warn("nothing")
}
