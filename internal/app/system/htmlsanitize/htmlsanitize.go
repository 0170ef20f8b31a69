// Package htmlsanitize strips unsafe HTML from user-supplied rich text
// (task descriptions, comment bodies) before storage.
package htmlsanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

// Sanitize returns input with script tags, event handlers, and other unsafe
// markup removed. Basic formatting (paragraphs, emphasis, lists, links) is
// preserved.
func Sanitize(input string) string {
	once.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(true)
		policy = p
	})
	return policy.Sanitize(input)
}

// StripAll removes all HTML, leaving plain text. Used for fields that must
// never contain markup (titles, locations).
func StripAll(input string) string {
	return bluemonday.StrictPolicy().Sanitize(input)
}
