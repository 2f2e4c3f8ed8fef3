// Package textdist measures edit distance between short strings. The extractor
// uses it to recover tag names that a language model misspelled.
package textdist
