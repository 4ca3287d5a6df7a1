// Package common keeps enumerations shared between configuration and layout
// packages so neither has to import the other.
package common

// Detail row emission policy for crosstab column groups.
// ENUM(first, last, all)
type DetailMode int

// Defers reports if emission has to wait until group is known to be ending.
func (d DetailMode) Defers() bool {
	return d == DetailModeLast
}
