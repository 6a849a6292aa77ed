// Package mapper binds table rows to typed records.
//
// The first row of a table is the header: each of its cells names the record
// field for that column. Bindings are registered up front on a Schema, each
// with a converter for the field's type, so no type inspection happens while
// rows are mapped.
package mapper

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

var (
	// ErrUnsupportedConversion indicates a cell value that does not convert to
	// the type of its field.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrUninstantiableType indicates the schema could not produce a new record.
	ErrUninstantiableType = errors.New("uninstantiable type")
	// ErrInvalidRecord indicates a mapped record that failed validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// RowError reports the row, and the column and field when known, at which
// mapping stopped.
type RowError struct {
	Row    int
	Column string
	Field  string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d column %s (%s=%q): %v", e.Row, e.Column, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// FieldSetter is implemented by records that assign their own fields by
// header name. SetField reports false for names it does not know.
type FieldSetter interface {
	SetField(name, value string) (bool, error)
}

type setter[T any] func(rec *T, value string) error

// Schema holds the field bindings of record type T.
type Schema[T any] struct {
	fields   map[string]setter[T]
	names    []string
	factory  func() (T, error)
	validate *validator.Validate
	log      zerolog.Logger
}

// Option configures a Schema.
type Option[T any] func(*Schema[T])

// WithFactory sets the constructor used for each record. Without one, records
// start as the zero value of T.
func WithFactory[T any](f func() (T, error)) Option[T] {
	return func(s *Schema[T]) {
		s.factory = f
	}
}

// WithValidator runs v against every mapped record. T must be a struct type.
func WithValidator[T any](v *validator.Validate) Option[T] {
	return func(s *Schema[T]) {
		s.validate = v
	}
}

// WithLogger sets the logger used for skipped headers.
func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(s *Schema[T]) {
		s.log = l
	}
}

// NewSchema returns an empty schema for T.
func NewSchema[T any](opts ...Option[T]) *Schema[T] {
	s := &Schema[T]{
		fields: make(map[string]setter[T]),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Field binds the header name to the field returned by ptr, converting cell
// values with conv. Binding a name twice replaces the earlier binding.
func Field[T, V any](s *Schema[T], name string, ptr func(*T) *V, conv Converter[V]) *Schema[T] {
	if _, ok := s.fields[name]; !ok {
		s.names = append(s.names, name)
	}
	s.fields[name] = func(rec *T, value string) error {
		v, err := conv(value)
		if err != nil {
			return err
		}
		*ptr(rec) = v
		return nil
	}
	return s
}

// Fields returns the bound header names in registration order.
func (s *Schema[T]) Fields() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Schema[T]) newRecord() (T, error) {
	if s.factory == nil {
		var zero T
		return zero, nil
	}
	rec, err := s.factory()
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrUninstantiableType, err)
	}
	return rec, nil
}

// set assigns value to the field named name. The schema binding wins over a
// FieldSetter; names neither knows are skipped.
func (s *Schema[T]) set(rec *T, name, value string) (bool, error) {
	if bind, ok := s.fields[name]; ok {
		return true, bind(rec, value)
	}
	if fs, ok := any(rec).(FieldSetter); ok {
		return fs.SetField(name, value)
	}
	return false, nil
}

// Map converts the data rows of t into records. Row 0 is the header and is
// matched by column position; absent cells leave their field untouched.
// Mapping stops at the first failing row, returning the records mapped so far
// with the error. A nil table yields nil; a table without data rows yields an
// empty slice.
func Map[T any](s *Schema[T], t *models.Table) ([]T, error) {
	if t == nil {
		return nil, nil
	}
	records := make([]T, 0, max(len(t.Rows)-1, 0))
	if len(t.Rows) < 2 {
		return records, nil
	}

	header := t.Rows[0]
	skipped := make(map[string]bool)
	for _, row := range t.Rows[1:] {
		rec, err := s.newRecord()
		if err != nil {
			return records, &RowError{Row: row.Number, Err: err}
		}

		for _, col := range t.Columns {
			name, ok := header.Get(col)
			if !ok {
				continue
			}
			value, ok := row.Get(col)
			if !ok {
				continue
			}
			known, err := s.set(&rec, name, value)
			if err != nil {
				if !errors.Is(err, ErrUnsupportedConversion) {
					err = fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
				}
				return records, &RowError{Row: row.Number, Column: col, Field: name, Value: value, Err: err}
			}
			if !known && !skipped[name] {
				skipped[name] = true
				s.log.Debug().Str("header", name).Msg("no field for header")
			}
		}

		if s.validate != nil {
			if err := s.validate.Struct(rec); err != nil {
				return records, &RowError{Row: row.Number, Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
