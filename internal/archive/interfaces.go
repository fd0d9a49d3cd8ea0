package archive

// Entry is one named payload of a bundle
type Entry struct {
	Name string
	Data []byte
}

// Packer produces one downloadable payload from named entries.
type Packer interface {
	Pack(entries []Entry) ([]byte, error)

	// Extension returns the file extension of the produced payload (e.g. ".zip").
	Extension() string
}
