// Package core provides the business logic for BMS log analysis.
//
// This package sits between the pure parsing engine and any transport. It
// can be used by web handlers, the directory watcher, CLI tools, or tests
// without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Service: the entry point for analyzing files, alone or in batches,
//     and for reading back analysis history.
//   - Limiter: a semaphore bounding how many files are parsed at once.
//   - Cache: analysis outcomes memoized by content fingerprint, so an
//     identical upload is parsed once no matter what it is named.
//   - Store: optional persistence of analysis summaries.
//   - Report: a transport-neutral view of one analysis, with row preview
//     and downsampled series.
//
// # Analysis Flow
//
//  1. The caller submits a [File] to [Service.Analyze] or many to
//     [Service.AnalyzeBatch]
//  2. Oversized files are rejected with [ErrFileTooLarge]
//  3. The content fingerprint is looked up in the cache; on a miss a limiter
//     slot is taken and the engine runs
//  4. The summary is persisted when a store is configured
//  5. [BuildReport] turns the [Analysis] into a response
//
// A batch of N files always yields N results in input order. A file that is
// rejected or fails to parse does not affect its neighbours.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
package core
