// Package ui contains the Fyne-based desktop user interface. It wires user
// interactions to the download service, drains the service's event channel
// onto the canvas thread and renders filters, the set list, progress and
// the log panel. All UI strings are localized via i18n.
package ui
