// Package language maps narration language settings to Kokoro language codes.
//
// Kokoro selects its phonemizer with a single-letter code ("a" for American
// English, "b" for British English, ...). Configuration may name a language
// by that letter, an ISO 639-1 or 639-2 code, a BCP 47 tag such as "en-GB",
// or an English word; Normalize folds all of these to the letter.
package language
