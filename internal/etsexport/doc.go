// Package etsexport encodes a hierarchical KNX group-address overview into
// the semicolon-separated CSV file that ETS imports as a group-address tree.
//
// The output is a byte-exact contract with ETS:
//
//   - Header: Main;Middle;Sub;Main;Middle;Sub;Central;Unfiltered;Description;DatapointType;Security
//   - One row per main group, middle group and group address (11 columns each)
//   - CRLF line endings, no trailing line break, no byte-order mark
//   - Windows-1252 bytes, never UTF-8
//
// # Usage
//
//	result, err := etsexport.Export(overview, etsexport.Options{ProjectName: "Villa"})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(result.Filename, result.Data, 0o644)
//
// # Leniency
//
// Every step has a fallback instead of an error path. Mojibake repair leaves
// unknown sequences alone, unknown datapoint types pass through verbatim,
// malformed group addresses parse as zeros and characters that Windows-1252
// cannot represent become '?'. A slightly imperfect row is preferred over an
// aborted export. The only error is a nil overview.
//
// Thread Safety: all functions are pure and safe for concurrent use.
package etsexport
