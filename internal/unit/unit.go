// Package unit converts <int, unit> literal pairs — the parser's
// representation of expressions like `2kb` or `1min` — into filesize or
// duration values, with overflow detection for the larger time units.
package unit

import (
	"fmt"
	"math"

	"github.com/cwbudde/quill/internal/value"
)

// Unit enumerates every literal suffix recognized by ValueWithUnit.
type Unit int

const (
	Byte Unit = iota
	Kilobyte
	Megabyte
	Gigabyte
	Terabyte
	Petabyte
	Exabyte
	Zettabyte

	Kibibyte
	Mebibyte
	Gibibyte
	Tebibyte
	Pebibyte
	Exbibyte
	Zebibyte

	Nanosecond
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
)

// decimalByteUnits/binaryByteUnits list the filesize units in ascending
// order; a unit's position gives the number of ×1000 (decimal) or ×1024
// (binary) steps Compute applies to reach bytes.
var decimalByteUnits = []Unit{Byte, Kilobyte, Megabyte, Gigabyte, Terabyte, Petabyte, Exabyte, Zettabyte}
var binaryByteUnits = []Unit{Kibibyte, Mebibyte, Gibibyte, Tebibyte, Pebibyte, Exbibyte, Zebibyte}

func isDecimalByte(u Unit) bool {
	for _, x := range decimalByteUnits {
		if x == u {
			return true
		}
	}
	return false
}

func isBinaryByte(u Unit) bool {
	for _, x := range binaryByteUnits {
		if x == u {
			return true
		}
	}
	return false
}

// String names a unit the way the literal's suffix spells it.
func (u Unit) String() string {
	switch u {
	case Byte:
		return "B"
	case Kilobyte:
		return "kB"
	case Megabyte:
		return "MB"
	case Gigabyte:
		return "GB"
	case Terabyte:
		return "TB"
	case Petabyte:
		return "PB"
	case Exabyte:
		return "EB"
	case Zettabyte:
		return "ZB"
	case Kibibyte:
		return "KiB"
	case Mebibyte:
		return "MiB"
	case Gibibyte:
		return "GiB"
	case Tebibyte:
		return "TiB"
	case Pebibyte:
		return "PiB"
	case Exbibyte:
		return "EiB"
	case Zebibyte:
		return "ZiB"
	case Nanosecond:
		return "ns"
	case Microsecond:
		return "µs"
	case Millisecond:
		return "ms"
	case Second:
		return "s"
	case Minute:
		return "min"
	case Hour:
		return "hr"
	case Day:
		return "day"
	case Week:
		return "wk"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// OverflowError is returned by Compute (as a Go error, not as an Error
// value) when a checked multiplication exceeds int64 range: any filesize
// scaling, or any time unit above nanosecond. The expression evaluator
// reports it as a GenericError titled "duration too large".
type OverflowError struct {
	Unit Unit
}

func (e *OverflowError) Error() string { return "duration too large" }

// Compute converts size paired with unit into a Filesize or Duration value.
func Compute(size int64, u Unit, sp value.Span) (value.Value, error) {
	switch {
	case isDecimalByte(u):
		steps := indexOf(decimalByteUnits, u)
		n, overflow := scaleChecked(size, 1000, steps)
		if overflow {
			return nil, &OverflowError{Unit: u}
		}
		return value.NewFilesize(n, sp), nil

	case isBinaryByte(u):
		// binaryByteUnits starts at Kibibyte, one ×1024 step above a byte.
		steps := indexOf(binaryByteUnits, u) + 1
		n, overflow := scaleChecked(size, 1024, steps)
		if overflow {
			return nil, &OverflowError{Unit: u}
		}
		return value.NewFilesize(n, sp), nil

	case u == Nanosecond:
		return value.NewDuration(size, sp), nil
	case u == Microsecond:
		return checkedDuration(size, 1_000, sp)
	case u == Millisecond:
		return checkedDuration(size, 1_000_000, sp)
	case u == Second:
		return checkedDuration(size, 1_000_000_000, sp)
	case u == Minute:
		return checkedDuration(size, 60*1_000_000_000, sp)
	case u == Hour:
		return checkedDuration(size, 60*60*1_000_000_000, sp)
	case u == Day:
		return checkedDuration(size, 24*60*60*1_000_000_000, sp)
	case u == Week:
		return checkedDuration(size, 7*24*60*60*1_000_000_000, sp)
	default:
		return nil, fmt.Errorf("unrecognized unit %v", u)
	}
}

func indexOf(units []Unit, target Unit) int {
	for i, u := range units {
		if u == target {
			return i
		}
	}
	return 0
}

// scaleChecked multiplies base by factor^steps using checked arithmetic at
// every step, reporting overflow rather than wrapping.
func scaleChecked(base int64, factor int64, steps int) (int64, bool) {
	n := base
	for i := 0; i < steps; i++ {
		if n != 0 && (n > math.MaxInt64/factor || n < math.MinInt64/factor) {
			return 0, true
		}
		n *= factor
	}
	return n, false
}

func checkedDuration(size, factor int64, sp value.Span) (value.Value, error) {
	if size != 0 && (size > math.MaxInt64/factor || size < math.MinInt64/factor) {
		return nil, &OverflowError{}
	}
	return value.NewDuration(size*factor, sp), nil
}
