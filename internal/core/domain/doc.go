// Package domain holds the entities the rest of ansa is built around:
//
//   - Document: a stored text with its embedding and metadata
//   - Chunk: a contiguous slice of a document produced by chunking
//   - QueryRequest and Answer: a question and its structured result,
//     including degraded results whose failure rides in the metadata
//   - AppSettings: the full configuration tree with its defaults
//
// Everything else imports domain; domain imports only the standard
// library. Keeping it dependency-free is what lets the same types move
// between SQLite, Chroma, and the in-memory repository untouched.
package domain
