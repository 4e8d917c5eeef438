// Package diag defines the diagnostic model shared by the lowering pipeline.
//
// Diagnostics come from three places: decoding tree documents (PCK codes),
// lowering limits such as the depth guard (LOW codes) and internal defects
// recovered at the driver's file boundary (DEF codes). A defect always means
// a bug in the engine or in the producer of the tree, never invalid user code:
// input trees are assumed to be validated upstream.
//
// Producers emit through a Reporter; BagReporter collects into a Bag that
// supports limits, sorting and deduplication. LockedReporter makes a Reporter
// safe for the parallel file workers of the driver.
//
// FormatShort renders one stable line per diagnostic and is used for golden
// tests and quiet CLI output. FormatPretty adds colour, a source snippet and a
// caret line aligned by display width.
package diag
