// Package scryfall builds image URL candidates for cards and downloads
// the images. Scryfall serves card scans by set and collector number with
// an optional print language, or directly by card identifier.
package scryfall
