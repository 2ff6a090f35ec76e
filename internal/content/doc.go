// Package content models acquired text posts and ranks them for narration.
//
// An Item is one post with its engagement score and an estimated reading time
// at 200 words per minute. Filter keeps the items whose reading time fits the
// configured window and orders them by descending score, breaking ties by the
// original fetch order. The package also owns the on-disk content export: a
// JSON list that the workflow treats as the content artifact and a CSV view
// for spreadsheets. Both formats load back into Items.
package content
