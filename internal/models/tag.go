package models

import "strings"

// Tag is a post category label. Storage accepts any string; the set below
// is what the board offers when composing.
type Tag string

const (
	TagGeneral  Tag = "General"
	TagQuestion Tag = "Question"
	TagRequest  Tag = "Request"
	TagNsfw     Tag = "Nsfw"
	TagSpoiler  Tag = "Spoiler"
)

// Tags lists the selectable tags in display order.
var Tags = []Tag{TagGeneral, TagQuestion, TagRequest, TagNsfw, TagSpoiler}

// ParseTag matches s against the known tags, case-insensitively.
// An empty string yields TagGeneral.
func ParseTag(s string) (Tag, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TagGeneral, true
	}
	for _, t := range Tags {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return Tag(s), false
}

// IsSensitive reports whether content under this tag is hidden until revealed.
func (t Tag) IsSensitive() bool {
	return t == TagNsfw || t == TagSpoiler
}
