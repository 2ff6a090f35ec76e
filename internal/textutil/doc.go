// Package textutil provides text processing utilities for cleaning scraped
// post bodies, fingerprinting, similarity, and filename sanitization.
//
// The primary use cases are:
//   - Turning markdown-flavored post text into plain narration text
//   - Creating token-based fingerprints so reposted text can be detected
//   - Sanitizing titles into filesystem-safe tokens
//
// The tokenization process lowercases text, splits on non-alphanumeric characters,
// and filters tokens shorter than 3 characters.
package textutil
