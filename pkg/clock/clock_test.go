package clock

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid timestamp", input: "2025-10-01 16:00:00"},
		{name: "midnight", input: "2025-01-01 00:00:00"},
		{name: "missing seconds", input: "2025-10-01 16:00", wantErr: true},
		{name: "rfc3339", input: "2025-10-01T16:00:00Z", wantErr: true},
		{name: "date only", input: "2025-10-01", wantErr: true},
		{name: "unpadded hour", input: "2025-10-01 6:00:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	in := "2025-10-01 18:30:15"
	parsed, err := Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Format(parsed); got != in {
		t.Errorf("Format(Parse(%q)) = %q, want identity", in, got)
	}
}

func TestLayoutSortsChronologically(t *testing.T) {
	// Lexicographic order of formatted values must match time order; listing
	// and index ordering rely on it for stored values.
	earlier := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2025, 10, 1, 16, 0, 0, 0, time.UTC)

	if !(Format(earlier) < Format(later)) {
		t.Errorf("formatted timestamps do not sort chronologically: %q vs %q", Format(earlier), Format(later))
	}
}
