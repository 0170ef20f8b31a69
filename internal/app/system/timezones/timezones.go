// Package timezones holds the curated list of IANA zones offered in the
// profile time-zone picker.
package timezones

import "time"

type Zone struct {
	ID    string
	Label string
}

// curated keeps the picker short; any valid IANA ID stored on a user still
// resolves via Location.
var curated = []Zone{
	{ID: "UTC", Label: "UTC"},
	{ID: "America/New_York", Label: "Eastern Time (US)"},
	{ID: "America/Chicago", Label: "Central Time (US)"},
	{ID: "America/Denver", Label: "Mountain Time (US)"},
	{ID: "America/Phoenix", Label: "Arizona"},
	{ID: "America/Los_Angeles", Label: "Pacific Time (US)"},
	{ID: "America/Anchorage", Label: "Alaska"},
	{ID: "Pacific/Honolulu", Label: "Hawaii"},
	{ID: "America/Toronto", Label: "Eastern Time (Canada)"},
	{ID: "America/Vancouver", Label: "Pacific Time (Canada)"},
	{ID: "America/Mexico_City", Label: "Mexico City"},
	{ID: "America/Sao_Paulo", Label: "São Paulo"},
	{ID: "Europe/London", Label: "London"},
	{ID: "Europe/Dublin", Label: "Dublin"},
	{ID: "Europe/Paris", Label: "Paris"},
	{ID: "Europe/Berlin", Label: "Berlin"},
	{ID: "Europe/Madrid", Label: "Madrid"},
	{ID: "Europe/Rome", Label: "Rome"},
	{ID: "Europe/Amsterdam", Label: "Amsterdam"},
	{ID: "Europe/Stockholm", Label: "Stockholm"},
	{ID: "Europe/Warsaw", Label: "Warsaw"},
	{ID: "Europe/Athens", Label: "Athens"},
	{ID: "Europe/Istanbul", Label: "Istanbul"},
	{ID: "Europe/Moscow", Label: "Moscow"},
	{ID: "Africa/Cairo", Label: "Cairo"},
	{ID: "Africa/Johannesburg", Label: "Johannesburg"},
	{ID: "Africa/Lagos", Label: "Lagos"},
	{ID: "Asia/Dubai", Label: "Dubai"},
	{ID: "Asia/Karachi", Label: "Karachi"},
	{ID: "Asia/Kolkata", Label: "India"},
	{ID: "Asia/Dhaka", Label: "Dhaka"},
	{ID: "Asia/Bangkok", Label: "Bangkok"},
	{ID: "Asia/Singapore", Label: "Singapore"},
	{ID: "Asia/Hong_Kong", Label: "Hong Kong"},
	{ID: "Asia/Shanghai", Label: "China"},
	{ID: "Asia/Tokyo", Label: "Tokyo"},
	{ID: "Asia/Seoul", Label: "Seoul"},
	{ID: "Australia/Perth", Label: "Perth"},
	{ID: "Australia/Sydney", Label: "Sydney"},
	{ID: "Pacific/Auckland", Label: "Auckland"},
}

var byID = func() map[string]Zone {
	m := make(map[string]Zone, len(curated))
	for _, z := range curated {
		m[z.ID] = z
	}
	return m
}()

// All returns the curated list of zones in a stable order.
func All() []Zone {
	out := make([]Zone, len(curated))
	copy(out, curated)
	return out
}

// IsValid reports whether id resolves to a loadable IANA zone. It accepts
// any valid zone, not just curated ones.
func IsValid(id string) bool {
	if id == "" {
		return false
	}
	_, err := time.LoadLocation(id)
	return err == nil
}

// Label returns the human-friendly label for an ID, or the ID itself when
// the zone is not in the curated list.
func Label(id string) string {
	if z, ok := byID[id]; ok {
		return z.Label
	}
	return id
}

// Location loads the zone, falling back to UTC for unknown or empty IDs.
func Location(id string) *time.Location {
	if id == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return time.UTC
	}
	return loc
}
