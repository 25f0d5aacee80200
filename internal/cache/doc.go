// Package cache memoizes analysis results by content fingerprint.
//
// Entries are keyed by a hash of the uploaded bytes, never by file name, so
// two different files that happen to share a name never collide and an
// identical upload under a new name is served from memory. The cache is
// bounded and evicts the least recently used fingerprint first. Concurrent
// requests for the same fingerprint share one computation.
package cache
