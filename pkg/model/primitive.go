package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PrimitiveKind identifies an Edm primitive type.
type PrimitiveKind uint8

const (
	PrimitiveNone PrimitiveKind = iota
	PrimitiveBinary
	PrimitiveBoolean
	PrimitiveByte
	PrimitiveDate
	PrimitiveDateTimeOffset
	PrimitiveDecimal
	PrimitiveDouble
	PrimitiveDuration
	PrimitiveGuid
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveSByte
	PrimitiveSingle
	PrimitiveString
	PrimitiveTimeOfDay
)

var primitiveNames = [...]string{
	PrimitiveNone:           "",
	PrimitiveBinary:         "Binary",
	PrimitiveBoolean:        "Boolean",
	PrimitiveByte:           "Byte",
	PrimitiveDate:           "Date",
	PrimitiveDateTimeOffset: "DateTimeOffset",
	PrimitiveDecimal:        "Decimal",
	PrimitiveDouble:         "Double",
	PrimitiveDuration:       "Duration",
	PrimitiveGuid:           "Guid",
	PrimitiveInt16:          "Int16",
	PrimitiveInt32:          "Int32",
	PrimitiveInt64:          "Int64",
	PrimitiveSByte:          "SByte",
	PrimitiveSingle:         "Single",
	PrimitiveString:         "String",
	PrimitiveTimeOfDay:      "TimeOfDay",
}

// String returns the short type name, for example "Int32".
func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return "Unknown"
}

// QualifiedName returns the Edm-qualified name, for example "Edm.Int32".
func (k PrimitiveKind) QualifiedName() string {
	if k == PrimitiveNone || int(k) >= len(primitiveNames) {
		return ""
	}
	return "Edm." + primitiveNames[k]
}

// LookupPrimitiveKind resolves a short or Edm-qualified primitive name.
func LookupPrimitiveKind(name string) (PrimitiveKind, bool) {
	name = strings.TrimPrefix(name, "Edm.")
	if name == "" {
		return PrimitiveNone, false
	}
	for k := PrimitiveBinary; k <= PrimitiveTimeOfDay; k++ {
		if primitiveNames[k] == name {
			return k, true
		}
	}
	return PrimitiveNone, false
}

// Primitive is a primitive value. The dynamic type of Value depends on Kind:
// Binary []byte, Boolean bool, Byte uint8, Date Date, DateTimeOffset
// time.Time, Decimal Decimal, Double float64, Duration time.Duration,
// Guid uuid.UUID, Int16 int16, Int32 int32, Int64 int64, SByte int8,
// Single float32, String string, TimeOfDay TimeOfDay.
type Primitive struct {
	Value any
	Kind  PrimitiveKind
}

// Check reports whether the Go type of p.Value matches p.Kind.
func (p Primitive) Check() error {
	ok := false
	switch p.Kind {
	case PrimitiveBinary:
		_, ok = p.Value.([]byte)
	case PrimitiveBoolean:
		_, ok = p.Value.(bool)
	case PrimitiveByte:
		_, ok = p.Value.(uint8)
	case PrimitiveDate:
		_, ok = p.Value.(Date)
	case PrimitiveDateTimeOffset:
		_, ok = p.Value.(time.Time)
	case PrimitiveDecimal:
		_, ok = p.Value.(Decimal)
	case PrimitiveDouble:
		_, ok = p.Value.(float64)
	case PrimitiveDuration:
		_, ok = p.Value.(time.Duration)
	case PrimitiveGuid:
		_, ok = p.Value.(uuid.UUID)
	case PrimitiveInt16:
		_, ok = p.Value.(int16)
	case PrimitiveInt32:
		_, ok = p.Value.(int32)
	case PrimitiveInt64:
		_, ok = p.Value.(int64)
	case PrimitiveSByte:
		_, ok = p.Value.(int8)
	case PrimitiveSingle:
		_, ok = p.Value.(float32)
	case PrimitiveString:
		_, ok = p.Value.(string)
	case PrimitiveTimeOfDay:
		_, ok = p.Value.(TimeOfDay)
	default:
		return fmt.Errorf("unknown primitive kind %d", p.Kind)
	}
	if !ok {
		return fmt.Errorf("%s primitive holds %T", p.Kind, p.Value)
	}
	return nil
}

// Decimal is an exact decimal number kept in its canonical lexical form.
type Decimal string

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// TimeOfDay is a clock time without a date or time zone.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// String formats the time as hh:mm:ss with an optional fraction.
func (t TimeOfDay) String() string {
	base := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond == 0 {
		return base
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
	return base + "." + frac
}

// String returns a String primitive value.
func String(s string) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveString, Value: s})
}

// Boolean returns a Boolean primitive value.
func Boolean(b bool) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveBoolean, Value: b})
}

// Int16 returns an Int16 primitive value.
func Int16(v int16) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveInt16, Value: v})
}

// Int32 returns an Int32 primitive value.
func Int32(v int32) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveInt32, Value: v})
}

// Int64 returns an Int64 primitive value.
func Int64(v int64) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveInt64, Value: v})
}

// Double returns a Double primitive value.
func Double(v float64) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveDouble, Value: v})
}

// DecimalValue returns a Decimal primitive value.
func DecimalValue(v string) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveDecimal, Value: Decimal(v)})
}

// Guid returns a Guid primitive value.
func Guid(v uuid.UUID) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveGuid, Value: v})
}

// DateTimeOffset returns a DateTimeOffset primitive value.
func DateTimeOffset(v time.Time) Value {
	return PrimitiveValue(Primitive{Kind: PrimitiveDateTimeOffset, Value: v})
}
