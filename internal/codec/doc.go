// Package codec decodes, resizes and re-encodes images.
//
// Decoding goes through github.com/disintegration/imaging (which registers
// JPEG, PNG, GIF, BMP and TIFF) plus golang.org/x/image/webp for WebP input.
// Only PNG and JPEG are written. A Transform built by NewTransform is the
// per-file unit of work the convert pipeline runs: decode, optional resize to
// an exact pixel size, encode, name.
package codec
