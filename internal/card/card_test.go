package card

import (
	"strings"
	"testing"
)

func TestDisplayHeight(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   int
	}{
		{"no attribute", "<svg></svg>", 650},
		{"declared height", `<svg height="300">`, 350},
		{"scenario card", `<svg height="200">...</svg>`, 250},
		{"first match wins", `<svg height="600"><rect height="20"/></svg>`, 650},
		{"first numeric match wins", `<svg height="100%"><rect height="20"/></svg>`, 70},
		{"unit suffix is not numeric", `<svg height="300px">`, 650},
		{"garbage", `<svg height="abc">`, 650},
		{"single quotes ignored", `<svg height='300'>`, 650},
		{"zero", `<svg height="0">`, 50},
		{"empty", "", 650},
		{"overflow", `<svg height="99999999999999999999999999">`, 650},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayHeight(tt.markup); got != tt.want {
				t.Errorf("DisplayHeight(%q) = %d, want %d", tt.markup, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	got := Filename("2024-01-01 12:00:00")
	if strings.Contains(got, ":") {
		t.Fatalf("Filename() = %q, contains ':'", got)
	}
	if got != "card_2024-01-01 12-00-00.svg" {
		t.Errorf("Filename() = %q, want %q", got, "card_2024-01-01 12-00-00.svg")
	}
}
