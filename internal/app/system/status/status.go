// Package status defines the record status values shared by users and teams.
package status

const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid checks if a value is a known record status.
func IsValid(v string) bool {
	return v == Active || v == Disabled
}
