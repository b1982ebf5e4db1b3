// Package clipboard implements the data-control clipboard driver, the
// reference-counted item cache and the optional persistent history.
package clipboard

import (
	"strings"

	"github.com/panelkit/panelkit/internal/shell"
)

// SentinelMime marks selections this process published itself. Recognizing
// it on an inbound offer prevents reading back our own copies.
const SentinelMime = "application/x-panelkit-origin"

// mimeRule is one entry of the fixed preference table. Exact rules match
// the whole mime type, prefix rules match structurally.
type mimeRule struct {
	match  string
	prefix bool
	kind   shell.ClipboardKind
}

// Preference order: plain-text variants before image variants, first
// structural match wins.
var mimePreference = []mimeRule{
	{match: "text/plain;charset=utf-8", kind: shell.ClipboardText},
	{match: "text/plain", kind: shell.ClipboardText},
	{match: "text/", prefix: true, kind: shell.ClipboardText},
	{match: "image/png", kind: shell.ClipboardImage},
	{match: "image/", prefix: true, kind: shell.ClipboardImage},
}

// Classify picks the mime type to read from an offer's advertised list.
// Returns ok=false when nothing in the list is usable.
func Classify(mimes []string) (mime string, kind shell.ClipboardKind, ok bool) {
	for _, rule := range mimePreference {
		for _, m := range mimes {
			if rule.prefix {
				if strings.HasPrefix(m, rule.match) {
					return m, rule.kind, true
				}
			} else if m == rule.match {
				return m, rule.kind, true
			}
		}
	}
	return "", shell.ClipboardOther, false
}

// HasSentinel reports whether the offer advertises our own sentinel mime.
func HasSentinel(mimes []string) bool {
	for _, m := range mimes {
		if m == SentinelMime {
			return true
		}
	}
	return false
}
