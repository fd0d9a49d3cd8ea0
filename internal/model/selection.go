package model

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by RemoveAt for an index outside the set
var ErrIndexOutOfRange = errors.New("selection index out of range")

// SelectionSet is the ordered list of files chosen for one tool session.
// It is a value: Append and RemoveAt return a new set and never modify the
// receiver, so a set handed to a running conversion stays stable.
type SelectionSet struct {
	files []InputFile
}

// NewSelectionSet creates a selection holding files in the given order
func NewSelectionSet(files ...InputFile) SelectionSet {
	return SelectionSet{}.Append(files...)
}

// Append returns a set with the existing files followed by files.
// Duplicates are kept.
func (s SelectionSet) Append(files ...InputFile) SelectionSet {
	if len(files) == 0 {
		return s
	}
	merged := make([]InputFile, 0, len(s.files)+len(files))
	merged = append(merged, s.files...)
	merged = append(merged, files...)
	return SelectionSet{files: merged}
}

// RemoveAt returns a set without the file at index; remaining files keep their order
func (s SelectionSet) RemoveAt(index int) (SelectionSet, error) {
	if index < 0 || index >= len(s.files) {
		return s, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.files))
	}
	rest := make([]InputFile, 0, len(s.files)-1)
	rest = append(rest, s.files[:index]...)
	rest = append(rest, s.files[index+1:]...)
	return SelectionSet{files: rest}, nil
}

// Len returns the number of files
func (s SelectionSet) Len() int {
	return len(s.files)
}

// IsEmpty reports whether nothing is selected
func (s SelectionSet) IsEmpty() bool {
	return len(s.files) == 0
}

// At returns the file at index; it panics on a bad index like a slice would
func (s SelectionSet) At(index int) InputFile {
	return s.files[index]
}

// Files returns a copy of the files in order
func (s SelectionSet) Files() []InputFile {
	out := make([]InputFile, len(s.files))
	copy(out, s.files)
	return out
}

// Names returns the file names in order
func (s SelectionSet) Names() []string {
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.Name
	}
	return names
}

// TotalSize returns the summed size of all files in bytes
func (s SelectionSet) TotalSize() int64 {
	var total int64
	for _, f := range s.files {
		total += f.Size()
	}
	return total
}
