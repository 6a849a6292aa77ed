package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  zerolog.Level
		known bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" INFO ", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.WarnLevel, false},
	}
	for _, tt := range tests {
		got, known := ParseLevel(tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("ParseLevel(%q) = %v, %v; expected %v, %v", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestSetupWriterJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	logger := SetupWriter(&buf, "info", "json")
	logger.Debug().Msg("hidden")
	logger.Info().Str("sheet", "People").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"sheet":"People"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("Expected a JSON info line, got %s", out)
	}
}
