package models

import (
	"regexp"
	"time"
)

// MediaKeyPattern matches inline media key references in message text,
// e.g. "blob:avatar-7". Keys are opaque client-chosen tokens.
var MediaKeyPattern = regexp.MustCompile(`blob:[A-Za-z0-9._-]+`)

// MessageContent is the content variant of a message, decided once at
// construction.
type MessageContent interface {
	isMessageContent()
}

// DirectMedia is content whose blob was uploaded out of band: the URL is
// already durable and nothing needs resolution.
type DirectMedia struct {
	URL     string
	Caption string
}

// TextWithReferences is a plain text body that may contain media key
// references awaiting resolution.
type TextWithReferences struct {
	Text string
}

func (DirectMedia) isMessageContent()        {}
func (TextWithReferences) isMessageContent() {}

type Message struct {
	ID        string
	Sender    string
	Content   MessageContent
	CreatedAt time.Time
}

// ExtractMediaKeys returns the distinct media key references found in text,
// in order of first appearance.
func ExtractMediaKeys(text string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, key := range MediaKeyPattern.FindAllString(text, -1) {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
