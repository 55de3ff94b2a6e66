// Package download drives the acquisition pipeline: keeping the card
// database fresh, loading the set index and downloading card images into
// the destination folder tree. All work runs on background goroutines and
// reports through a single event channel that the UI drains.
package download
