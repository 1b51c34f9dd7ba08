package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(Notice)

	logger := New("test")

	SetLevel(Warning)
	logger.Notice("hidden")
	logger.Warning("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected notice message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected warning message tagged with module name; got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("value %d", 42)
	if !strings.Contains(buf.String(), "value 42") {
		t.Fatalf("expected debug message to be logged; got %q", buf.String())
	}
}
