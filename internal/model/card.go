package model

import (
	"fmt"
	"strings"
)

// Card is a single printed card inside a set. The MTGJSON schema is large and
// versioned, so the record stays an opaque map and only the fields this
// application relies on are exposed through accessors.
type Card map[string]any

// Name returns the card name, or "" when absent.
func (c Card) Name() string {
	return stringField(c, "name")
}

// Types returns the card's type list (e.g. ["Legendary", "Creature"]).
func (c Card) Types() []string {
	return stringSliceField(c, "types")
}

// HasType reports whether the given type appears in the card's type list.
func (c Card) HasType(t string) bool {
	for _, ct := range c.Types() {
		if ct == t {
			return true
		}
	}
	return false
}

// Rarity returns the printed rarity keyword, or "" when absent.
func (c Card) Rarity() string {
	return stringField(c, "rarity")
}

// Colors returns the card's color codes, falling back to colorIdentity when
// the colors field is absent or empty.
func (c Card) Colors() []string {
	if colors := stringSliceField(c, "colors"); len(colors) > 0 {
		return colors
	}
	return stringSliceField(c, "colorIdentity")
}

// Number returns the printed collector number as a string.
func (c Card) Number() string {
	switch v := c["number"].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
	default:
		return ""
	}
}

// ScryfallID returns the card's external image identifier. MTGJSON stores it
// under identifiers.scryfallId; older exports carried it at the top level.
func (c Card) ScryfallID() string {
	if id := stringField(c, "scryfallId"); id != "" {
		return id
	}
	if ids, ok := c["identifiers"].(map[string]any); ok {
		if id, ok := ids["scryfallId"].(string); ok {
			return id
		}
	}
	return ""
}

// Set is one MTGJSON set record, keyed from the database's top-level data
// object by set code.
type Set map[string]any

// Name returns the set name, or the given code when the name is absent.
func (s Set) Name(code string) string {
	if name := stringField(s, "name"); name != "" {
		return name
	}
	return code
}

// ReleaseDate returns the set's release date (YYYY-MM-DD), or "".
func (s Set) ReleaseDate() string {
	return stringField(s, "releaseDate")
}

// Cards returns the set's card records.
func (s Set) Cards() []Card {
	raw, ok := s["cards"].([]any)
	if !ok {
		return nil
	}
	cards := make([]Card, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			cards = append(cards, Card(m))
		}
	}
	return cards
}

// SetIndex maps set codes to their set records.
type SetIndex map[string]Set

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
