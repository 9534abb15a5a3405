// Package utils provides time formatting helpers shared by the presentation
// layers (formatter, server, CLI).
package utils
