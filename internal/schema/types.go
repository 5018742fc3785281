package schema

// Model is the root of an introspected database structure
type Model struct {
	Tables     []*Table
	Sequences  []*Sequence
	Enums      []*EnumType
	Extensions []*Extension
}

// Table represents a database table
type Table struct {
	Model   *Model
	Schema  string
	Name    string
	Comment *string

	// Columns is populated by Compact once constraint and index resolution is done
	Columns           []*Column
	PrimaryKey        *PrimaryKey
	ForeignKeys       []*ForeignKey
	UniqueConstraints []*UniqueConstraint
	Indexes           []*Index

	slots []Slot
}

// ValueGeneration describes how a column value is produced on insert
type ValueGeneration int

const (
	GenerationNone ValueGeneration = iota
	GenerationSerial
	GenerationIdentityAlways
	GenerationIdentityByDefault
)

func (g ValueGeneration) String() string {
	switch g {
	case GenerationSerial:
		return "serial"
	case GenerationIdentityAlways:
		return "identity always"
	case GenerationIdentityByDefault:
		return "identity by default"
	default:
		return "none"
	}
}

// Column represents a table column
type Column struct {
	Table *Table
	Name  string
	// Ordinal is the 1-based attribute number in the catalog
	Ordinal   int
	Nullable  bool
	StoreType string
	// UnderlyingStoreType is set only for domain types
	UnderlyingStoreType *string
	DefaultSQL          *string
	ValueGeneration     ValueGeneration
	GeneratedOnAdd      bool
	Comment             *string
}

// Index represents a database index that does not back a constraint
type Index struct {
	Table          *Table
	Name           string
	IsUnique       bool
	Columns        []*Column
	IncludeColumns []*Column
	Filter         *string
	// Method is nil for the default btree access method
	Method *string
}

// PrimaryKey represents a primary key constraint
type PrimaryKey struct {
	Table   *Table
	Name    string
	Columns []*Column
}

// UniqueConstraint represents a unique constraint
type UniqueConstraint struct {
	Table   *Table
	Name    string
	Columns []*Column
}

// ReferentialAction is the action applied to dependent rows on delete
type ReferentialAction int

const (
	NoAction ReferentialAction = iota
	Restrict
	Cascade
	SetNull
	SetDefault
)

func (a ReferentialAction) String() string {
	switch a {
	case Restrict:
		return "RESTRICT"
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Table            *Table
	Name             string
	Columns          []*Column
	PrincipalTable   *Table
	PrincipalColumns []*Column
	OnDelete         ReferentialAction
}

// Sequence represents a sequence that is not owned by a generated column.
// Nil start/min/max values mean the engine default applies.
type Sequence struct {
	Model       *Model
	Schema      string
	Name        string
	StoreType   string
	StartValue  *int64
	MinValue    *int64
	MaxValue    *int64
	IncrementBy int64
	IsCyclic    bool
}

// EnumType represents a user-defined enum. Schema is empty for public.
type EnumType struct {
	Schema string
	Name   string
	Labels []string
}

// Extension represents an installed extension
type Extension struct {
	Name    string
	Schema  string
	Version string
}
