// Package price converts between the three digit display form of a fuel price
// (e.g. 1.78⁹) and the normalized integer amount in subcents (1789).
package price

import (
	"fmt"
	"math"
	"refuel/internal/assert"
)

// Display is a price as shown by the source: [major, minor, subMinor].
type Display [3]uint8

func (d Display) Major() uint8    { return d[0] }
func (d Display) Minor() uint8    { return d[1] }
func (d Display) SubMinor() uint8 { return d[2] }

// Amount returns the subcent amount of the display price.
func (d Display) Amount() int64 {
	return ToAmount(d[0], d[1], d[2])
}

func (d Display) String() string {
	return fmt.Sprintf("%d.%02d%d", d[0], d[1], d[2])
}

// RangeError is returned when a price component does not fit its target width.
type RangeError struct {
	Component string
	Value     int64
	Max       int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("price %s out of range: %d (max %d)", e.Component, e.Value, e.Max)
}

// ToAmount computes major*1000 + minor*10 + subMinor. Out of range digits can only
// come from a parsing bug, so they panic.
func ToAmount(major, minor, subMinor uint8) int64 {
	assert.LessThan("minor", minor, 100)
	assert.LessThan("subMinor", subMinor, 10)
	return int64(major)*1000 + int64(minor)*10 + int64(subMinor)
}

// ToDisplay is the inverse of ToAmount.
func ToDisplay(amount int64) (Display, error) {
	if amount < 0 {
		return Display{}, &RangeError{Component: "amount", Value: amount, Max: math.MaxInt64}
	}
	major := amount / 1000
	minor := (amount / 10) % 100
	subMinor := amount % 10
	if major > math.MaxUint8 {
		return Display{}, &RangeError{Component: "major", Value: major, Max: math.MaxUint8}
	}
	return Display{uint8(major), uint8(minor), uint8(subMinor)}, nil
}

// Parse builds a Display out of its already extracted digit groups. Unlike ToAmount
// it reports out of range values as errors.
func Parse(major, minor, subMinor uint64) (Display, error) {
	if major > math.MaxUint8 {
		return Display{}, &RangeError{Component: "major", Value: int64(major), Max: math.MaxUint8}
	}
	if minor > 99 {
		return Display{}, &RangeError{Component: "minor", Value: int64(minor), Max: 99}
	}
	if subMinor > 9 {
		return Display{}, &RangeError{Component: "subMinor", Value: int64(subMinor), Max: 9}
	}
	return Display{uint8(major), uint8(minor), uint8(subMinor)}, nil
}
