package telemetry

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("json", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewBuildsConsoleLogger(t *testing.T) {
	log, err := New("console", "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.Core().Enabled(-1) {
		t.Fatalf("expected debug level to be enabled")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "  short ", limit: 10, want: "short"},
		{in: "привет мир", limit: 6, want: "привет..."},
		{in: "anything", limit: 0, want: ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
}
