package model

// Package model defines domain data structures used across the app: input files,
// selection sets, conversion specs, output artifacts, deliverables and conversion
// jobs. Values are immutable where the UI replaces them wholesale (SelectionSet) and
// plain structs where services update them under their own locks (ConversionJob).
