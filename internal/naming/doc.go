// Package naming builds the on-disk layout for downloaded card images:
// sanitized file names and the set, language, color, type and rarity folder
// labels, localized in English and Portuguese.
package naming
