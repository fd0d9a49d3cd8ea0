// Package tools holds the catalog of image tools and turns a tool plus user
// options into a conversion pipeline.
package tools
