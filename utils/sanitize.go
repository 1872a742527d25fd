package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips dangerous HTML from user-submitted bodies before they
// are screened and persisted.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
