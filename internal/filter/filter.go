// Package filter selects downloadable cards from the set index by type,
// rarity and name. It also owns the selectable filter options and their
// localized labels for the UI.
package filter

import (
	"strings"

	"github.com/mtgget/mtg-downloader/internal/model"
)

// TypeRule decides whether a card matches a type filter.
type TypeRule func(model.Card) bool

// TypeRules maps filter keys to their predicates. Unknown keys fall back
// to "all".
var TypeRules = map[string]TypeRule{
	"all":         func(model.Card) bool { return true },
	"creature":    func(c model.Card) bool { return c.HasType("Creature") },
	"land":        func(c model.Card) bool { return c.HasType("Land") },
	"enchantment": func(c model.Card) bool { return c.HasType("Enchantment") },
	"artifact":    func(c model.Card) bool { return c.HasType("Artifact") },
	"instant":     func(c model.Card) bool { return c.HasType("Instant") },
	"sorcery":     func(c model.Card) bool { return c.HasType("Sorcery") },
	"spell":       func(c model.Card) bool { return c.HasType("Instant") || c.HasType("Sorcery") },
}

// TypeOrder lists the type filter keys in selector order.
var TypeOrder = []string{
	"all", "creature", "land", "enchantment", "artifact",
	"instant", "sorcery", "spell",
}

var typeLabels = map[string]map[string]string{
	"all":         {"pt": "Todas as cartas", "en": "All cards"},
	"creature":    {"pt": "Criaturas", "en": "Creatures"},
	"land":        {"pt": "Terrenos", "en": "Lands"},
	"enchantment": {"pt": "Encantamentos", "en": "Enchantments"},
	"artifact":    {"pt": "Artefatos", "en": "Artifacts"},
	"instant":     {"pt": "Mágicas instantâneas", "en": "Instants"},
	"sorcery":     {"pt": "Mágicas feitiço", "en": "Sorceries"},
	"spell":       {"pt": "Mágicas (Instant/Sorcery)", "en": "Instants or sorceries"},
}

// RarityValues maps rarity filter keys to the database rarity keyword. The
// empty value means no rarity restriction.
var RarityValues = map[string]string{
	"all":      "",
	"common":   "common",
	"uncommon": "uncommon",
	"rare":     "rare",
	"mythic":   "mythic",
	"special":  "special",
	"promo":    "promo",
	"bonus":    "bonus",
}

// RarityOrder lists the rarity filter keys in selector order.
var RarityOrder = []string{
	"all", "common", "uncommon", "rare", "mythic", "special", "promo", "bonus",
}

var rarityLabels = map[string]map[string]string{
	"all":      {"pt": "Todas as raridades", "en": "All rarities"},
	"common":   {"pt": "Comum", "en": "Common"},
	"uncommon": {"pt": "Incomum", "en": "Uncommon"},
	"rare":     {"pt": "Rara", "en": "Rare"},
	"mythic":   {"pt": "Mítica", "en": "Mythic"},
	"special":  {"pt": "Especial", "en": "Special"},
	"promo":    {"pt": "Promo", "en": "Promo"},
	"bonus":    {"pt": "Bônus", "en": "Bonus"},
}

// TypeLabel returns the localized selector label for a type filter key.
func TypeLabel(key, locale string) string {
	return localizedLabel(typeLabels, key, locale)
}

// RarityLabel returns the localized selector label for a rarity filter key.
func RarityLabel(key, locale string) string {
	return localizedLabel(rarityLabels, key, locale)
}

func localizedLabel(labels map[string]map[string]string, key, locale string) string {
	byLocale, ok := labels[key]
	if !ok {
		return key
	}
	if label, ok := byLocale[locale]; ok {
		return label
	}
	return byLocale["en"]
}

// Criteria describes one card selection.
type Criteria struct {
	SetCodes     []string
	TypeKey      string
	RarityKey    string
	NameContains string
}

// Apply walks the selected sets and returns the matching cards per set code
// together with the total count. Cards without an external image identifier
// are skipped and sets without matches are omitted.
func Apply(index model.SetIndex, criteria Criteria) (map[string][]model.Card, int) {
	rule, ok := TypeRules[criteria.TypeKey]
	if !ok {
		rule = TypeRules["all"]
	}
	rarity := RarityValues[criteria.RarityKey]
	name := strings.ToLower(strings.TrimSpace(criteria.NameContains))

	selected := make(map[string][]model.Card)
	total := 0
	for _, code := range criteria.SetCodes {
		set, ok := index[code]
		if !ok {
			continue
		}
		var matches []model.Card
		for _, card := range set.Cards() {
			if !rule(card) {
				continue
			}
			if rarity != "" && card.Rarity() != rarity {
				continue
			}
			if name != "" && !strings.Contains(strings.ToLower(card.Name()), name) {
				continue
			}
			if card.ScryfallID() == "" {
				continue
			}
			matches = append(matches, card)
		}
		if len(matches) > 0 {
			selected[code] = matches
			total += len(matches)
		}
	}
	return selected, total
}
