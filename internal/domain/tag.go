package domain

import (
	"strings"
	"unicode"
)

// TagID is the normalized dedup key derived from a tag's display name
type TagID string

// Tag is a label attachable to transactions. The display name normalizes to
// Title Case per word; the id is the lowercase, space-stripped form of that
// name, so "food" and "Food" collide.
type Tag struct {
	ID   TagID  `json:"id"`
	Name string `json:"name"`
}

// NewTag normalizes a raw name into a Tag
func NewTag(name string) Tag {
	normalized := normalizeTagName(name)
	id := TagID(strings.ToLower(strings.ReplaceAll(normalized, " ", "")))
	return Tag{ID: id, Name: normalized}
}

func (id TagID) String() string { return string(id) }

// Equal compares tags by derived id only
func (t Tag) Equal(other Tag) bool {
	return t.ID == other.ID
}

func normalizeTagName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
