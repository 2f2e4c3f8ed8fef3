// Package extract recovers tagged fields from free-form language model output.
//
// Models are asked to wrap every field in XML-like tags, and they frequently
// misspell, mismatch or forget to close them. The Extractor tries an exact
// match first and then falls back, in order, to a declared typo table, fuzzy
// matching by edit distance, and recovery of mismatched opening and closing
// tags. A miss is reported as not found and is never an error.
package extract
