// Package naming derives output file names from input names and decides what
// happens when two artifacts of one bundle end up with the same name.
//
// Names are flat: any directory part of an input name is dropped, so
// "sub/x.png" and "x.png" map to the same output name.
package naming
