package schema

// TableKey identifies a table or sequence by schema and name
type TableKey struct {
	Schema string
	Name   string
}

func (k TableKey) String() string {
	if k.Schema == "" {
		return k.Name
	}
	return k.Schema + "." + k.Name
}

// NewModel creates an empty model
func NewModel() *Model {
	return &Model{}
}

// Key returns the identifying key of the table
func (t *Table) Key() TableKey {
	return TableKey{Schema: t.Schema, Name: t.Name}
}

// DisplayName returns schema.name
func (t *Table) DisplayName() string {
	return t.Key().String()
}

// AddTable returns the table with the given schema and name, creating it if
// it does not exist yet
func (m *Model) AddTable(schemaName, name string) *Table {
	if t := m.FindTable(schemaName, name); t != nil {
		return t
	}
	t := &Table{Model: m, Schema: schemaName, Name: name}
	m.Tables = append(m.Tables, t)
	return t
}

// FindTable returns the table matching schema and name exactly
func (m *Model) FindTable(schemaName, name string) *Table {
	for _, t := range m.Tables {
		if t.Schema == schemaName && t.Name == name {
			return t
		}
	}
	return nil
}

// RemoveTable removes a table from the model along with every foreign key
// of another table that references it. It returns the removed foreign keys.
func (m *Model) RemoveTable(target *Table) []*ForeignKey {
	var dropped []*ForeignKey
	tables := m.Tables[:0]
	for _, t := range m.Tables {
		if t == target {
			continue
		}
		kept := t.ForeignKeys[:0]
		for _, fk := range t.ForeignKeys {
			if fk.PrincipalTable == target {
				dropped = append(dropped, fk)
				continue
			}
			kept = append(kept, fk)
		}
		t.ForeignKeys = kept
		tables = append(tables, t)
	}
	for i := len(tables); i < len(m.Tables); i++ {
		m.Tables[i] = nil
	}
	m.Tables = tables
	return dropped
}

// AddSequence appends a sequence unless one with the same schema and name
// is already present. It reports whether the sequence was added.
func (m *Model) AddSequence(seq *Sequence) bool {
	if m.FindSequence(seq.Schema, seq.Name) != nil {
		return false
	}
	seq.Model = m
	m.Sequences = append(m.Sequences, seq)
	return true
}

// FindSequence returns the sequence matching schema and name exactly
func (m *Model) FindSequence(schemaName, name string) *Sequence {
	for _, s := range m.Sequences {
		if s.Schema == schemaName && s.Name == name {
			return s
		}
	}
	return nil
}

// AddEnum registers an enum type
func (m *Model) AddEnum(e *EnumType) {
	m.Enums = append(m.Enums, e)
}

// AddExtension registers an installed extension
func (m *Model) AddExtension(ext *Extension) {
	m.Extensions = append(m.Extensions, ext)
}
