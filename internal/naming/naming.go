package naming

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mtgget/mtg-downloader/internal/model"
)

// LanguageChoice pairs a Scryfall language code with its display name.
type LanguageChoice struct {
	Name string
	Code string
}

// LanguageChoices lists the Scryfall print languages in selection order. The
// position in this list also drives the numbered language folder prefix.
var LanguageChoices = []LanguageChoice{
	{"English", "en"},
	{"Spanish", "es"},
	{"French", "fr"},
	{"German", "de"},
	{"Italian", "it"},
	{"Portuguese", "pt"},
	{"Japanese", "ja"},
	{"Korean", "ko"},
	{"Russian", "ru"},
	{"Simplified Chinese", "zhs"},
	{"Traditional Chinese", "zht"},
	{"Hebrew", "he"},
	{"Latin", "la"},
	{"Ancient Greek", "grc"},
	{"Arabic", "ar"},
	{"Sanskrit", "sa"},
	{"Phyrexian", "ph"},
	{"Quenya", "qya"},
}

// Display returns the selector label for a language choice, e.g.
// "English (EN)".
func (c LanguageChoice) Display() string {
	return fmt.Sprintf("%s (%s)", c.Name, strings.ToUpper(c.Code))
}

// LanguageCodeFromDisplay resolves a selector label back to its code,
// defaulting to English.
func LanguageCodeFromDisplay(display string) string {
	for _, choice := range LanguageChoices {
		if choice.Display() == display {
			return choice.Code
		}
	}
	return "en"
}

var rarityFolderLabels = map[string]map[string]string{
	"en": {
		"common":   "1-Common",
		"uncommon": "2-Uncommon",
		"rare":     "3-Rare",
		"mythic":   "4-Mythic",
		"special":  "5-Special",
		"bonus":    "6-Bonus",
	},
	"pt": {
		"common":   "1-Comum",
		"uncommon": "2-Incomum",
		"rare":     "3-Rara",
		"mythic":   "4-Mítica",
		"special":  "5-Especial",
		"bonus":    "6-Bônus",
	},
}

var noRarityLabels = map[string]string{
	"en": "0-NoRarity",
	"pt": "0-SemRaridade",
}

var colorFolderLabels = map[string]map[string]string{
	"en": {
		"W": "1-White",
		"U": "2-Blue",
		"B": "3-Black",
		"R": "4-Red",
		"G": "5-Green",
		"C": "0-Colorless",
	},
	"pt": {
		"W": "1-Branca",
		"U": "2-Azul",
		"B": "3-Preta",
		"R": "4-Vermelha",
		"G": "5-Verde",
		"C": "0-Incolor",
	},
}

var colorlessLabels = map[string]string{
	"en": "0-Colorless",
	"pt": "0-Incolor",
}

const multicolorLabel = "7-Multicolor"

// typePriority orders card types from most to least specific for folder
// placement. A card matching several types lands in the first match.
var typePriority = []string{
	"Land",
	"Creature",
	"Planeswalker",
	"Instant",
	"Sorcery",
	"Enchantment",
	"Artifact",
	"Battle",
}

var typeFolderLabels = map[string]map[string]string{
	"en": {
		"Land":         "0-Land",
		"Creature":     "1-Creature",
		"Planeswalker": "2-Planeswalker",
		"Instant":      "3-Instant",
		"Sorcery":      "4-Sorcery",
		"Enchantment":  "5-Enchantment",
		"Artifact":     "6-Artifact",
		"Battle":       "7-Battle",
	},
	"pt": {
		"Land":         "0-Terreno",
		"Creature":     "1-Criatura",
		"Planeswalker": "2-Planeswalker",
		"Instant":      "3-Instant",
		"Sorcery":      "4-Feitiço",
		"Enchantment":  "5-Encantamento",
		"Artifact":     "6-Artefato",
		"Battle":       "7-Batalha",
	},
}

var otherTypesLabels = map[string]string{
	"en": "8-Others",
	"pt": "8-Outros",
}

func localeOrDefault(locale string) string {
	if locale == "pt" {
		return "pt"
	}
	return "en"
}

// Sanitize strips characters that are unsafe in file and folder names,
// keeping letters, digits, spaces and "-_#". Empty results become "card".
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_#", r) {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		return "card"
	}
	return safe
}

// SetFolder returns the folder name for a set, "CODE_Set Name" sanitized.
func SetFolder(code string, set model.Set) string {
	name := set.Name(code)
	folder := Sanitize(fmt.Sprintf("%s_%s", code, name))
	if folder == "card" {
		return Sanitize(code)
	}
	return folder
}

// RarityFolder maps a card rarity to its numbered folder label. Unknown
// rarities get a sanitized title-cased folder of their own.
func RarityFolder(rarity, locale string) string {
	locale = localeOrDefault(locale)
	cleaned := strings.ToLower(strings.TrimSpace(rarity))
	if cleaned == "" {
		return noRarityLabels[locale]
	}
	if label, ok := rarityFolderLabels[locale][cleaned]; ok {
		return label
	}
	fallback := Sanitize(cases.Title(language.Und).String(cleaned))
	if fallback == "card" {
		return noRarityLabels[locale]
	}
	return fallback
}

// ColorFolder maps a card's colors to a folder label: one label per single
// color, a shared multicolor folder for two or more, colorless otherwise.
func ColorFolder(card model.Card, locale string) string {
	locale = localeOrDefault(locale)
	colors := card.Colors()
	unique := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		if c != "" {
			unique[c] = struct{}{}
		}
	}
	switch len(unique) {
	case 0:
		return colorlessLabels[locale]
	case 1:
		var only string
		for c := range unique {
			only = c
		}
		label, ok := colorFolderLabels[locale][only]
		if !ok {
			label = only
		}
		if s := Sanitize(label); s != "card" {
			return s
		}
		return colorlessLabels[locale]
	default:
		return multicolorLabel
	}
}

// TypeFolder maps a card's types to a folder label following the type
// priority order. Cards with only unrecognized types get a folder named
// after their first type.
func TypeFolder(card model.Card, locale string) string {
	locale = localeOrDefault(locale)
	types := card.Types()
	for _, keyword := range typePriority {
		for _, t := range types {
			if t == keyword {
				return typeFolderLabels[locale][keyword]
			}
		}
	}
	if len(types) > 0 {
		if s := Sanitize("8-" + types[0]); s != "card" {
			return s
		}
	}
	return otherTypesLabels[locale]
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// LanguageFolder returns the numbered folder for an image language, e.g.
// "01-English" or "10-SimplifiedChinese". Unknown codes get a "99-" prefix.
func LanguageFolder(code string) string {
	cleaned := strings.ToLower(strings.TrimSpace(code))
	if cleaned == "" {
		cleaned = "en"
	}
	for i, choice := range LanguageChoices {
		if choice.Code == cleaned {
			name := strings.ReplaceAll(choice.Name, " ", "")
			if stripped, _, err := transform.String(accentStripper, name); err == nil {
				name = stripped
			}
			return fmt.Sprintf("%02d-%s", i+1, name)
		}
	}
	return "99-" + strings.ToUpper(cleaned)
}

// CardFileName builds the image file name "number_Name.png". The fallback
// suffix marks English images saved in place of an unavailable translation.
func CardFileName(number, name, suffix string) string {
	base := Sanitize(name)
	cleaned := strings.TrimSpace(number)
	if cleaned != "" {
		base = fmt.Sprintf("%s_%s", Sanitize(cleaned), base)
	}
	return base + suffix + ".png"
}
