package catalog

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v2"
)

// DataType is the integer type code parameter files use for values.
type DataType int

const (
	Boolean  DataType = 3
	Char     DataType = 4
	SByte    DataType = 5
	Byte     DataType = 6
	Int16    DataType = 7
	UInt16   DataType = 8
	Int32    DataType = 9
	UInt32   DataType = 10
	Int64    DataType = 11
	UInt64   DataType = 12
	Single   DataType = 13
	Double   DataType = 14
	Decimal  DataType = 15
	DateTime DataType = 16
	String   DataType = 18
)

var dataTypeNames = map[DataType]string{
	Boolean:  "Boolean",
	Char:     "Char",
	SByte:    "SByte",
	Byte:     "Byte",
	Int16:    "Int16",
	UInt16:   "UInt16",
	Int32:    "Int32",
	UInt32:   "UInt32",
	Int64:    "Int64",
	UInt64:   "UInt64",
	Single:   "Single",
	Double:   "Double",
	Decimal:  "Decimal",
	DateTime: "DateTime",
	String:   "String",
}

func (t DataType) String() string {
	if n, ok := dataTypeNames[t]; ok {
		return n
	}
	return "DataType(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is a supported type code.
func (t DataType) Valid() bool {
	_, ok := dataTypeNames[t]
	return ok
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
}

// Value is a raw parameter value converted to its declared type.
type Value struct {
	typ DataType
	v   interface{}
	s   string
}

func (v Value) Type() DataType { return v.typ }

// String returns the canonical text form stored in the catalog.
func (v Value) String() string { return v.s }

// Interface returns the typed Go value: bool, string, int64, uint64, float64,
// *apd.Decimal or time.Time.
func (v Value) Interface() interface{} { return v.v }

// Coerce converts raw to type t. Unsupported types and unparsable values are
// KindConfigFormat errors.
func Coerce(t DataType, raw string) (Value, error) {
	if !t.Valid() {
		return Value{}, Errorf(KindConfigFormat, "unsupported data type code %d", int(t))
	}
	if t == String {
		return Value{typ: t, v: raw, s: raw}, nil
	}
	if t == Char {
		if utf8.RuneCountInString(raw) != 1 {
			return Value{}, Errorf(KindConfigFormat, "value %q is not a single character", raw)
		}
		return Value{typ: t, v: raw, s: raw}, nil
	}

	trimmed := strings.TrimSpace(raw)
	switch t {
	case Boolean:
		var b bool
		switch {
		case strings.EqualFold(trimmed, "true"):
			b = true
		case strings.EqualFold(trimmed, "false"):
		default:
			return Value{}, Errorf(KindConfigFormat, "value %q is not a %v, want True or False", raw, t)
		}
		return Value{typ: t, v: b, s: strconv.FormatBool(b)}, nil
	case SByte, Int16, Int32, Int64:
		i, err := strconv.ParseInt(trimmed, 10, bitSize(t))
		if err != nil {
			return Value{}, Wrapf(err, KindConfigFormat, "value %q is not a %v", raw, t)
		}
		return Value{typ: t, v: i, s: strconv.FormatInt(i, 10)}, nil
	case Byte, UInt16, UInt32, UInt64:
		u, err := strconv.ParseUint(trimmed, 10, bitSize(t))
		if err != nil {
			return Value{}, Wrapf(err, KindConfigFormat, "value %q is not a %v", raw, t)
		}
		return Value{typ: t, v: u, s: strconv.FormatUint(u, 10)}, nil
	case Single, Double:
		f, err := strconv.ParseFloat(trimmed, bitSize(t))
		if err != nil {
			return Value{}, Wrapf(err, KindConfigFormat, "value %q is not a %v", raw, t)
		}
		return Value{typ: t, v: f, s: strconv.FormatFloat(f, 'g', -1, bitSize(t))}, nil
	case Decimal:
		d, _, err := apd.NewFromString(trimmed)
		if err != nil {
			return Value{}, Wrapf(err, KindConfigFormat, "value %q is not a %v", raw, t)
		}
		return Value{typ: t, v: d, s: d.String()}, nil
	case DateTime:
		for _, layout := range dateTimeLayouts {
			ts, err := time.Parse(layout, trimmed)
			if err == nil {
				return Value{typ: t, v: ts, s: ts.Format(time.RFC3339Nano)}, nil
			}
		}
		return Value{}, Errorf(KindConfigFormat, "value %q is not a %v", raw, t)
	}
	panic("unhandled data type " + t.String())
}

func bitSize(t DataType) int {
	switch t {
	case SByte, Byte:
		return 8
	case Int16, UInt16:
		return 16
	case Int32, UInt32, Single:
		return 32
	}
	return 64
}
