package parser

import (
	"errors"

	"github.com/noah-isme/epd-student-api/internal/models"
)

// Sentinel errors returned by operations. None of them abort a row; the
// builder turns them into diagnostics and moves on to the next cell.
var (
	ErrUnparseable      = errors.New("unparseable value")
	ErrUnknownEnum      = errors.New("unknown enum value")
	ErrUnknownSession   = errors.New("unknown session label")
	ErrNoAcademicRecord = errors.New("no academic record to update")
	ErrMissingResult    = errors.New("academic record has no final result")
)

// Kind tags the variant of an Operation.
type Kind string

// Operation kinds.
const (
	KindAssign      Kind = "assign"
	KindConditional Kind = "conditional"
	KindEnumLookup  Kind = "enum_lookup"
	KindAppend      Kind = "append"
	KindLastRecord  Kind = "last_record"
)

// Operation mutates a record in progress from one (header, value) cell.
type Operation interface {
	Kind() Kind
	Apply(rec *models.StudentRecord, key, value string) error
}

// Gate decides whether a conditional operation fires for a cell value.
type Gate func(value string) bool

// IsOne accepts checkbox cells holding "1".
var IsOne Gate = isOne

// IsTruthy accepts any non-empty cell.
var IsTruthy Gate = isTruthy

// Assign writes a scalar field. Empty cells are skipped unless KeepEmpty is set.
type Assign struct {
	KeepEmpty bool
	Set       func(rec *models.StudentRecord, value string) error
}

// Kind implements Operation.
func (a Assign) Kind() Kind { return KindAssign }

// Apply implements Operation.
func (a Assign) Apply(rec *models.StudentRecord, _ string, value string) error {
	if value == "" && !a.KeepEmpty {
		return nil
	}
	return a.Set(rec, value)
}

// Conditional runs Then when Gate accepts the value and Else otherwise.
type Conditional struct {
	Gate Gate
	Then func(rec *models.StudentRecord, key string)
	Else func(rec *models.StudentRecord, key string)
}

// Kind implements Operation.
func (c Conditional) Kind() Kind { return KindConditional }

// Apply implements Operation.
func (c Conditional) Apply(rec *models.StudentRecord, key, value string) error {
	if c.Gate(value) {
		c.Then(rec, key)
	} else if c.Else != nil {
		c.Else(rec, key)
	}
	return nil
}

// EnumLookup resolves the header (FromKey) or the cell value to a closed
// enum member. Unknown text leaves the field untouched and reports ErrUnknownEnum.
type EnumLookup struct {
	FromKey bool
	Gate    Gate
	Lookup  func(text string) (string, bool)
	Set     func(rec *models.StudentRecord, member string)
}

// Kind implements Operation.
func (e EnumLookup) Kind() Kind { return KindEnumLookup }

// Apply implements Operation.
func (e EnumLookup) Apply(rec *models.StudentRecord, key, value string) error {
	gate := e.Gate
	if gate == nil {
		gate = IsTruthy
	}
	if !gate(value) {
		return nil
	}
	text := value
	if e.FromKey {
		text = key
	}
	member, ok := e.Lookup(text)
	if !ok {
		return unknownEnum(text)
	}
	e.Set(rec, member)
	return nil
}

// Append accumulates into a list fed by several columns.
type Append struct {
	Gate Gate
	Add  func(rec *models.StudentRecord, key, value string) error
}

// Kind implements Operation.
func (a Append) Kind() Kind { return KindAppend }

// Apply implements Operation.
func (a Append) Apply(rec *models.StudentRecord, key, value string) error {
	gate := a.Gate
	if gate == nil {
		gate = IsTruthy
	}
	if !gate(value) {
		return nil
	}
	return a.Add(rec, key, value)
}

// LastRecord mutates the most recently appended academic record, which is how
// a row's per-session columns are correlated with the preceding Session column.
type LastRecord struct {
	Mutate func(record *models.AcademicRecord, key, value string) error
}

// Kind implements Operation.
func (l LastRecord) Kind() Kind { return KindLastRecord }

// Apply implements Operation.
func (l LastRecord) Apply(rec *models.StudentRecord, key, value string) error {
	if value == "" {
		return nil
	}
	record := rec.LastAcademicRecord()
	if record == nil {
		return ErrNoAcademicRecord
	}
	return l.Mutate(record, key, value)
}
