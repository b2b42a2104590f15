package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		ok            bool
	}{
		{"", "", true},
		{"debug", "console", true},
		{"warn", "json", true},
		{"loud", "console", false},
		{"info", "xml", false},
	}
	for _, tt := range tests {
		l, err := New(tt.level, tt.format)
		if (err == nil) != tt.ok {
			t.Fatalf("New(%q, %q) ok=%v err=%v", tt.level, tt.format, tt.ok, err)
		}
		if tt.ok && l == nil {
			t.Fatalf("New(%q, %q) returned nil logger", tt.level, tt.format)
		}
	}
}
