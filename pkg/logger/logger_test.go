package logger

import (
	"testing"

	"github.com/STAYCALM1234/mabest-alum/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format %s: unexpected error %v", format, err)
		}
		if l == nil {
			t.Fatalf("format %s: logger is nil", format)
		}
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
