// Package warnings aggregates per-row data-quality problems into one summary
// per warning type with a handful of example identifiers.
package warnings
