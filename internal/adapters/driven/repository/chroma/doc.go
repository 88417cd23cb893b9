// Package chroma provides a Chroma-backed implementation of the document
// repository port.
//
// This adapter talks to a Chroma server over HTTP using the v2 API of
// github.com/amikos-tech/chroma-go. Documents live in a single collection
// created with cosine space, so similarity search runs server-side and
// matches come back already scored: the reported distance is the cosine
// complement, converted here with similarity = 1 - distance.
//
// # Metadata
//
// Chroma has no document schema beyond ID, text and embedding, so owner,
// theme, title, source and timestamps travel as reserved metadata
// attributes prefixed with an underscore. User metadata keys are stored
// as-is and must not start with an underscore.
package chroma
