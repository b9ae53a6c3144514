package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Reserved keys that let a single Dict play the role of struct instance,
// matrix, or plain user dictionary. Scripts are allowed to inspect these.
const (
	KeyType    = "__type__"
	KeyMatrix  = "__matrix__"
	KeyRows    = "__rows__"
	KeyCols    = "__cols__"
)

// Dict is the one concrete container type backing dict literals, structs,
// 1-D arrays and 2-D matrices. Instances are reference-shared: copying a
// Value of KindDict copies the pointer, so mutation through an alias (e.g.
// a struct passed as a function argument) is visible to every holder.
type Dict struct {
	entries map[any]Value
}

func NewDict() *Dict {
	return &Dict{entries: make(map[any]Value)}
}

// KeyOf normalises an index Value to the map key Dict uses internally:
// integers key as int64, everything else keys as its formatted string.
func KeyOf(v Value) any {
	if v.Kind == KindInt {
		return v.I
	}
	return v.Format()
}

func (d *Dict) Get(key any) Value {
	if v, ok := d.entries[key]; ok {
		return v
	}
	return Null
}

func (d *Dict) Set(key any, v Value) {
	d.entries[key] = v
}

func (d *Dict) Has(key any) bool {
	_, ok := d.entries[key]
	return ok
}

func (d *Dict) Delete(key any) {
	delete(d.entries, key)
}

func (d *Dict) Len() int {
	return len(d.entries)
}

// Keys implements keys(d): every key other than __type__, taken as strings
// and sorted lexicographically (integer keys are coerced to their decimal
// string form first, so "10" sorts before "2" when keys are mixed-type --
// a faithful port of the original's loosely-defined ordering, see DESIGN.md).
func (d *Dict) Keys() *Dict {
	out := make([]string, 0, len(d.entries))
	raw := make(map[string]any, len(d.entries))
	for k := range d.entries {
		if s, ok := k.(string); ok && s == KeyType {
			continue
		}
		var s string
		switch kk := k.(type) {
		case int64:
			s = strconv.FormatInt(kk, 10)
		case string:
			s = kk
		}
		out = append(out, s)
		raw[s] = k
	}
	sort.Strings(out)
	result := NewDict()
	for i, s := range out {
		orig := raw[s]
		if iv, ok := orig.(int64); ok {
			result.Set(int64(i), Int(iv))
		} else {
			result.Set(int64(i), Str(s))
		}
	}
	return result
}

func (d *Dict) Format() string {
	if t, ok := d.entries[KeyType]; ok {
		return fmt.Sprintf("<struct %s>", t.S)
	}
	if _, ok := d.entries[KeyMatrix]; ok {
		return fmt.Sprintf("<matrix %sx%s>", d.Get(KeyRows).Format(), d.Get(KeyCols).Format())
	}
	parts := make([]string, 0, len(d.entries))
	for k, v := range d.entries {
		parts = append(parts, fmt.Sprintf("%v:%s", k, v.Format()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

// NewStruct allocates an instance of struct type name with every declared
// field bound to integer 0, per the compiler's recorded field order.
func NewStruct(typeName string, fields []string) *Dict {
	d := NewDict()
	d.Set(KeyType, Str(typeName))
	for _, f := range fields {
		d.Set(f, Int(0))
	}
	return d
}

func (d *Dict) IsStruct() bool {
	_, ok := d.entries[KeyType]
	return ok
}

func (d *Dict) IsMatrix() bool {
	_, ok := d.entries[KeyMatrix]
	return ok
}

// NewMatrix allocates a rows x cols 2-D container, every cell initialised
// to fill.
func NewMatrix(rows, cols int64, fill Value) *Dict {
	d := NewDict()
	d.Set(KeyMatrix, Int(1))
	d.Set(KeyRows, Int(rows))
	d.Set(KeyCols, Int(cols))
	for r := int64(0); r < rows; r++ {
		for c := int64(0); c < cols; c++ {
			d.Set(matrixKey(r, c), fill)
		}
	}
	return d
}

func matrixKey(row, col int64) string {
	return strconv.FormatInt(row, 10) + "," + strconv.FormatInt(col, 10)
}

func (d *Dict) MatrixGet(row, col int64) Value {
	return d.Get(matrixKey(row, col))
}

// MatrixSet writes a cell and extends __rows__/__cols__ monotonically to
// max(old, index+1). Bounds never shrink, even if the largest index is
// later overwritten -- preserved deliberately, see DESIGN.md open question.
func (d *Dict) MatrixSet(row, col int64, v Value) {
	d.Set(matrixKey(row, col), v)
	if row+1 > d.Get(KeyRows).I {
		d.Set(KeyRows, Int(row+1))
	}
	if col+1 > d.Get(KeyCols).I {
		d.Set(KeyCols, Int(col+1))
	}
}

func (d *Dict) MatrixRows() int64 { return d.Get(KeyRows).I }
func (d *Dict) MatrixCols() int64 { return d.Get(KeyCols).I }
