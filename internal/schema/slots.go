package schema

import "fmt"

// PlaceholderKind explains why an attribute position holds no column
type PlaceholderKind int

const (
	// NotPlaceholder marks a slot that holds a column
	NotPlaceholder PlaceholderKind = iota
	Dropped
	Enum
	Computed
)

func (k PlaceholderKind) String() string {
	switch k {
	case Dropped:
		return "dropped"
	case Enum:
		return "enum"
	case Computed:
		return "computed"
	default:
		return "column"
	}
}

// Slot is one attribute position of a table under construction.
// Either it holds a column or it is a placeholder of some kind.
type Slot struct {
	column      *Column
	placeholder PlaceholderKind
}

// Column returns the column held by the slot, if any
func (s Slot) Column() (*Column, bool) {
	return s.column, s.column != nil
}

// Placeholder returns the placeholder kind, NotPlaceholder for a real column
func (s Slot) Placeholder() PlaceholderKind {
	return s.placeholder
}

// UnresolvedOrdinalError reports a constraint or index position that does
// not resolve to a supported column
type UnresolvedOrdinalError struct {
	Table   string
	Ordinal int64
	Kind    PlaceholderKind
	// OutOfRange is set when the ordinal lies outside the attribute arena
	OutOfRange bool
}

func (e *UnresolvedOrdinalError) Error() string {
	if e.OutOfRange {
		return fmt.Sprintf("ordinal %d is out of range for table %s", e.Ordinal, e.Table)
	}
	return fmt.Sprintf("ordinal %d of table %s is a %s placeholder", e.Ordinal, e.Table, e.Kind)
}

// NextOrdinal returns the attribute number the next slot will occupy
func (t *Table) NextOrdinal() int {
	return len(t.slots) + 1
}

// AddColumn appends a column at the next attribute position
func (t *Table) AddColumn(col *Column) {
	col.Table = t
	col.Ordinal = t.NextOrdinal()
	t.slots = append(t.slots, Slot{column: col})
}

// AddPlaceholder reserves the next attribute position without a column
func (t *Table) AddPlaceholder(kind PlaceholderKind) {
	if kind == NotPlaceholder {
		kind = Dropped
	}
	t.slots = append(t.slots, Slot{placeholder: kind})
}

// Slots returns the attribute arena, including placeholders
func (t *Table) Slots() []Slot {
	return t.slots
}

// ResolveColumns maps 1-based attribute numbers to columns. It fails on the
// first ordinal that is out of range or lands on a placeholder.
func (t *Table) ResolveColumns(ordinals []int64) ([]*Column, error) {
	columns := make([]*Column, 0, len(ordinals))
	for _, ordinal := range ordinals {
		if ordinal < 1 || ordinal > int64(len(t.slots)) {
			return nil, &UnresolvedOrdinalError{Table: t.DisplayName(), Ordinal: ordinal, OutOfRange: true}
		}
		slot := t.slots[ordinal-1]
		col, ok := slot.Column()
		if !ok {
			return nil, &UnresolvedOrdinalError{Table: t.DisplayName(), Ordinal: ordinal, Kind: slot.placeholder}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// Compact publishes the non-placeholder slots as Columns. The arena is left
// untouched so that calling Compact again yields the same result.
func (t *Table) Compact() {
	columns := make([]*Column, 0, len(t.slots))
	for _, slot := range t.slots {
		if col, ok := slot.Column(); ok {
			columns = append(columns, col)
		}
	}
	t.Columns = columns
}

// FindColumn returns the column with the given name, looking at the arena
// so it works before and after Compact
func (t *Table) FindColumn(name string) *Column {
	for _, slot := range t.slots {
		if col, ok := slot.Column(); ok && col.Name == name {
			return col
		}
	}
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}
