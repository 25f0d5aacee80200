// Package engine classifies and parses battery-management-system (BMS) log files.
//
// The engine is a pure function of its input: it receives a file name and the
// raw bytes of one log and returns an [Outcome]. It performs no I/O, keeps no
// state between calls and never panics on malformed input, so callers may run
// any number of analyses concurrently without synchronization.
//
// # Pipeline
//
// One file flows through these stages:
//
//  1. [DecodeLines] turns bytes into lines, replacing undecodable sequences.
//  2. [Classify] scans the first [HeaderScanLimit] lines for a header signature
//     and harvests key=value metadata found before it.
//  3. [ParseTable] parses the comma-delimited section starting at the header
//     into typed columns and sorts rows by their timestamp column.
//  4. Data logs: [NormalizeTime], [DerivePower], [DeriveScaled],
//     [DeriveCellSpread] and [DetectFlags].
//     Error logs: [TallyErrors].
//
// [Analyze] runs the whole pipeline and returns a tagged [Outcome]:
// recognized, unrecognized or parse failure.
//
// # Warnings
//
// Structural problems never abort a file. They are returned as [Warning]
// values with stable codes:
//
//	W001 - Malformed row (wrong field count), row dropped
//	W002 - Duplicate column name, both columns kept
//	W003 - Unparseable timestamp, value treated as missing
//	W004 - Flag column has an unexpected value shape, reported inactive
//	W005 - Error log has no "Error Code" column, tally empty
//	W006 - Elapsed time anchored on a missing timestamp, comparison unreliable
//	W007 - CSV syntax error, row dropped
package engine
