// Package model provides the shared types of the snapshot engine.
//
// This package contains type definitions, the content digest, and the error
// taxonomy. All other internal packages import model; model imports nothing
// internal.
//
// Key constraints:
//   - Exactly one blob per BlobSet carries KindDocument, and it comes first
//   - Identities are slash-separated regardless of host OS
//   - Snapshot IDs increase strictly with creation order
package model
