package platform

// Package platform contains OS integration: reading inputs and saving results
// on disk, folder discovery and watching, and OS open/reveal.
