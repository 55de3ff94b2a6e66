package model

// Package model contains the data types shared across the application:
// opaque MTGJSON card and set records with documented accessors, the derived
// set metadata used for selection and search, and the event union carried
// from background operations to the UI.
