// Package pipeline orchestrates target expansion, per-file metadata
// extraction, and batch summary reporting.
//
// A target is a file, a directory (walked by [Discover]) or "-" for stdin,
// which is spooled to a scratch file first. Files are processed
// sequentially; cancellation is checked between files. Reports are rendered
// once at the end so JSON and YAML output stay a single document.
//
// With four or more probed files the summary also flags bitrate outliers
// using the interquartile range of the batch.
package pipeline
