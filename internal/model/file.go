package model

import (
	"path"
	"strings"
)

// InputFile is one user-selected image: its name as shown to the user, the raw
// bytes and the declared media type. Treat Data as read-only.
type InputFile struct {
	Name     string
	Data     []byte
	MimeType string
}

// NewInputFile creates an input file value
func NewInputFile(name string, data []byte, mimeType string) InputFile {
	return InputFile{Name: name, Data: data, MimeType: mimeType}
}

// Size returns the payload size in bytes
func (f InputFile) Size() int64 {
	return int64(len(f.Data))
}

// BaseName returns the last path element of Name, accepting both / and \ separators
func (f InputFile) BaseName() string {
	return path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
}

// OutputArtifact is the encoded result of transforming one InputFile
type OutputArtifact struct {
	Name   string
	Data   []byte
	Width  int
	Height int
	Source string // name of the InputFile it came from
}

// DeliverableKind tells how a deliverable is offered to the user
type DeliverableKind string

const (
	// DeliverableSingle is a single converted file offered directly
	DeliverableSingle DeliverableKind = "single"

	// DeliverableBundle is an archive holding every converted file
	DeliverableBundle DeliverableKind = "bundle"
)

// Deliverable is the final downloadable unit: one artifact or one bundle
type Deliverable struct {
	Kind    DeliverableKind
	Name    string
	Data    []byte
	Entries []string // artifact names, in bundle order
}

// IsBundle reports whether the deliverable is an archive
func (d *Deliverable) IsBundle() bool {
	return d.Kind == DeliverableBundle
}

// Size returns the payload size in bytes
func (d *Deliverable) Size() int64 {
	return int64(len(d.Data))
}
