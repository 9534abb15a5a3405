// Package formatter renders arrival boards for people and clients.
//
// This package is organized into:
// - types.go: presentation document types
// - wrapper.go: board building and filtering
// - json.go: JSON serialization
// - xml.go: XML serialization with proper escaping
// - text.go: aligned plain-text table
package formatter
