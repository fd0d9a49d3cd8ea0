package naming

import (
	"path"
	"strings"
)

// ResizedSuffix is appended to the stem of resized images
const ResizedSuffix = "_resized"

// Namer turns an input name into an output name
type Namer func(inputName string) string

// Flatten returns the last path element of name, accepting / and \ separators
func Flatten(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// SplitExt splits a flattened name into stem and extension.
// A leading dot is part of the stem, so ".hidden" has no extension.
func SplitExt(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// ReplaceExt returns the flattened name with its extension replaced by ext
// (photo.jpeg -> photo.png). Names without an extension get ext appended.
func ReplaceExt(name, ext string) string {
	stem, _ := SplitExt(Flatten(name))
	return stem + ext
}

// Suffixed returns stem + suffix + ext (a.jpg -> a_resized.jpg)
func Suffixed(name, suffix, ext string) string {
	stem, _ := SplitExt(Flatten(name))
	return stem + suffix + ext
}

// ExtensionNamer returns a Namer replacing the extension with ext
func ExtensionNamer(ext string) Namer {
	return func(inputName string) string {
		return ReplaceExt(inputName, ext)
	}
}

// SuffixNamer returns a Namer adding suffix before the new extension
func SuffixNamer(suffix, ext string) Namer {
	return func(inputName string) string {
		return Suffixed(inputName, suffix, ext)
	}
}
