package logging

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelLoggerFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLevelLogger(LevelInfo, NewWriterLogger(&buf, "test"))

	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Infof("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "test ")
	assert.Contains(t, buf.String(), "logger_test.go")

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")

	buf.Reset()
	l.SetLevel(LevelError)
	l.Warningf("dropped")
	l.Errorf("boom")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "ERR: boom")
}

func TestLevelLoggerWithoutSink(t *testing.T) {
	l := NewLevelLogger(LevelDetail, nil)
	assert.NotPanics(t, func() {
		l.Infof("x")
		l.Errorf("y")
	})
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in       string
		expected int32
	}{
		{"error", LevelError},
		{"WARN", LevelWarn},
		{" info ", LevelInfo},
		{"debug", LevelDebug},
		{"detail", LevelDetail},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			level, err := ParseLevel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestUseGlog(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, UseGlog("", 0)) })

	require.NoError(t, UseGlog("", 1))
	assert.Equal(t, "true", flag.Lookup("logtostderr").Value.String())
	assert.Equal(t, "1", flag.Lookup("v").Value.String())

	l := NewLevelLogger(LevelDebug, GLogger{})
	assert.NotPanics(t, func() {
		l.Infof("to stderr")
		l.Warningf("to stderr")
		l.Errorf("to stderr")
		Flush()
	})

	dir := t.TempDir()
	require.NoError(t, UseGlog(dir, 2))
	assert.Equal(t, dir, flag.Lookup("log_dir").Value.String())
	assert.Equal(t, "false", flag.Lookup("logtostderr").Value.String())
	assert.Equal(t, "2", flag.Lookup("v").Value.String())
}
