package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer assert.NoError(t, os.Unsetenv("APP_ENV"))
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentField(t *testing.T) {
	assert.NoError(t, os.Unsetenv("APP_ENV"))
	var buf bytes.Buffer
	l := newZerologLogger("scheduler", &buf)
	l.Infof("run complete")
	out := buf.String()
	if !strings.Contains(out, `"component":"scheduler"`) {
		t.Fatalf("missing component field: %s", out)
	}
	if !strings.Contains(out, "run complete") {
		t.Fatalf("missing message: %s", out)
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("d")
	l.Debugw("d", nil)
	l.Infof("i")
	l.Warnf("w")
	l.Errorf("e")
}
