package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValue_Equal(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"empty equals empty", EmptyValue(), Value{}, true},
		{"same number", NumberValue(1), NumberValue(1), true},
		{"number differs from text", NumberValue(1), TextValue("1"), false},
		{"different text", TextValue("a"), TextValue("b"), false},
		{"same date", DateValue(day), DateValue(day), true},
		{"bool vs empty", BoolValue(false), EmptyValue(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestRow_Key(t *testing.T) {
	a := Row{NumberValue(1), TextValue("x"), EmptyValue()}
	b := Row{NumberValue(1), TextValue("x"), EmptyValue()}
	c := Row{TextValue("1"), TextValue("x"), EmptyValue()}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())

	// separator characters inside text must not collide with cell boundaries
	d := Row{TextValue("a\x1fb")}
	e := Row{TextValue("a"), TextValue("b")}
	assert.NotEqual(t, d.Key(), e.Key())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", EmptyValue().String())
	assert.Equal(t, "2.5", NumberValue(2.5).String())
	assert.Equal(t, "3", NumberValue(3).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "2024-07-01", DateValue(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "2024-07-01 08:30:00", DateValue(time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)).String())
}

func TestRecordSet_ColumnIndex(t *testing.T) {
	rs := &RecordSet{Columns: []string{"A", "B"}}

	idx, ok := rs.ColumnIndex("B")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = rs.ColumnIndex("C")
	assert.False(t, ok)

	assert.True(t, (&RecordSet{}).IsBlank())
	assert.False(t, rs.IsBlank())
	assert.Equal(t, 0, (*RecordSet)(nil).Len())
}
