package timezones

import (
	"testing"
	"time"
)

func TestAllZonesLoad(t *testing.T) {
	zones := All()
	if len(zones) == 0 {
		t.Fatal("expected curated zones")
	}
	for _, z := range zones {
		if _, err := time.LoadLocation(z.ID); err != nil {
			t.Errorf("curated zone %q does not load: %v", z.ID, err)
		}
		if z.Label == "" {
			t.Errorf("curated zone %q has no label", z.ID)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"UTC", true},
		{"America/Chicago", true},
		{"Asia/Tokyo", true},
		{"Mars/Olympus_Mons", false},
		{"", false},
		{"not a zone", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.id); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("Asia/Kolkata"); got != "India" {
		t.Errorf("Label(Asia/Kolkata) = %q", got)
	}
	// Non-curated zones fall back to the ID.
	if got := Label("Antarctica/McMurdo"); got != "Antarctica/McMurdo" {
		t.Errorf("Label fallback = %q", got)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	if loc := Location(""); loc != time.UTC {
		t.Errorf("Location(\"\") = %v, want UTC", loc)
	}
	if loc := Location("bogus"); loc != time.UTC {
		t.Errorf("Location(bogus) = %v, want UTC", loc)
	}
	if loc := Location("Europe/Paris"); loc.String() != "Europe/Paris" {
		t.Errorf("Location(Europe/Paris) = %v", loc)
	}
}
