package domain

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the scalar type held by a Value
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindDate
)

// String returns the kind name used in logs and keys
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Value is a single spreadsheet cell: text, number, bool, date or empty.
// The zero Value is empty.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

// EmptyValue returns an empty cell value
func EmptyValue() Value { return Value{} }

// TextValue returns a text cell value
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns a numeric cell value
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// BoolValue returns a boolean cell value
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// DateValue returns a date cell value
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// IsEmpty reports whether the value holds nothing
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Interface returns the value as a Go scalar suitable for a workbook cell
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number
	case KindBool:
		return v.Bool
	case KindDate:
		return v.Time
	default:
		return nil
	}
}

// String formats the value for text outputs such as CSV
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == other.Text
	case KindNumber:
		return v.Number == other.Number
	case KindBool:
		return v.Bool == other.Bool
	case KindDate:
		return v.Time.Equal(other.Time)
	default:
		return true
	}
}

// key returns a kind-prefixed encoding used for row identity
func (v Value) key() string {
	switch v.Kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindDate:
		return "d:" + strconv.FormatInt(v.Time.UnixNano(), 10)
	case KindBool:
		return "b:" + strconv.FormatBool(v.Bool)
	case KindText:
		return "t:" + v.Text
	default:
		return "e:"
	}
}

// Row is one record, aligned with the owning set's Columns
type Row []Value

// Key returns a string that is equal for two rows exactly when every
// value is equal.
func (r Row) Key() string {
	var b strings.Builder
	for i, v := range r {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(strconv.Quote(v.key()))
	}
	return b.String()
}

// RecordSet is the table extracted from one source workbook
type RecordSet struct {
	Source  string
	Columns []string
	Rows    []Row
}

// Len returns the number of rows
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// IsBlank reports whether the set has neither columns nor rows
func (rs *RecordSet) IsBlank() bool {
	return rs == nil || (len(rs.Columns) == 0 && len(rs.Rows) == 0)
}

// ColumnIndex returns the position of the named column
func (rs *RecordSet) ColumnIndex(name string) (int, bool) {
	for i, c := range rs.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// ConsolidatedTable is the deduplicated projection of all record sets
type ConsolidatedTable struct {
	Columns           []string
	Rows              []Row
	InputRows         int
	DuplicatesRemoved int
}

// Len returns the number of rows
func (t *ConsolidatedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
