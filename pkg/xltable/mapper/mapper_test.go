package mapper

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

type person struct {
	Name string `validate:"required"`
	Age  int    `validate:"gte=0"`
}

func personSchema(opts ...Option[person]) *Schema[person] {
	s := NewSchema(opts...)
	Field(s, "Name", func(p *person) *string { return &p.Name }, Text)
	Field(s, "Age", func(p *person) *int { return &p.Age }, Int)
	return s
}

// table builds a table whose rows hold the given values in columns A, B, C...
func table(rows ...[]string) *models.Table {
	t := models.NewTable("T")
	for i, values := range rows {
		r := models.NewRow(i + 1)
		for j, v := range values {
			col := string(rune('A' + j))
			t.AddColumn(col)
			r.Cells[col] = v
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

func TestMapRecords(t *testing.T) {
	got, err := Map(personSchema(), table(
		[]string{"Name", "Age"},
		[]string{"Alice", "30"},
	))
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Alice", Age: 30}}, got)
}

func TestMapHeaderByPosition(t *testing.T) {
	tbl := table(
		[]string{"Age", "Nickname", "Name", "name"},
		[]string{"41", "Bobby", "Bob", "ignored"},
	)
	// C3 is absent, so Name keeps its zero value
	r := models.NewRow(3)
	r.Cells["A"] = "7"
	tbl.Rows = append(tbl.Rows, r)

	got, err := Map(personSchema(), tbl)
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Bob", Age: 41}, {Age: 7}}, got)
}

func TestMapEmptyTables(t *testing.T) {
	got, err := Map(personSchema(), nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = Map(personSchema(), table([]string{"Name", "Age"}))
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = Map(personSchema(), models.NewTable("Blank"))
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestMapUnsupportedConversion(t *testing.T) {
	got, err := Map(personSchema(), table(
		[]string{"Name", "Age"},
		[]string{"Alice", "30"},
		[]string{"Bob", "thirty"},
		[]string{"Carol", "5"},
	))
	require.ErrorIs(t, err, ErrUnsupportedConversion)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, "B", rowErr.Column)
	assert.Equal(t, "Age", rowErr.Field)
	assert.Equal(t, "thirty", rowErr.Value)
	// rows before the failure are kept
	assert.Equal(t, []person{{Name: "Alice", Age: 30}}, got)
}

func TestMapUninstantiableType(t *testing.T) {
	s := personSchema(WithFactory(func() (person, error) {
		return person{}, errors.New("no constructor")
	}))
	got, err := Map(s, table([]string{"Name"}, []string{"Alice"}))
	assert.ErrorIs(t, err, ErrUninstantiableType)
	assert.Empty(t, got)
}

func TestMapFactoryDefaults(t *testing.T) {
	s := personSchema(WithFactory(func() (person, error) {
		return person{Age: -1}, nil
	}))
	got, err := Map(s, table([]string{"Name"}, []string{"Alice"}))
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Alice", Age: -1}}, got)
}

func TestMapValidator(t *testing.T) {
	s := personSchema(WithValidator[person](validator.New()))
	got, err := Map(s, table(
		[]string{"Name", "Age"},
		[]string{"Alice", "30"},
		[]string{"", "4"},
	))
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Len(t, got, 1)
}

type item struct {
	SKU   string
	Price decimal.Decimal
	Qty   *int
	Due   time.Time
	Extra map[string]string
}

func (it *item) SetField(name, value string) (bool, error) {
	if name == "SKU" {
		return false, nil
	}
	if it.Extra == nil {
		it.Extra = make(map[string]string)
	}
	it.Extra[name] = value
	return true, nil
}

func TestMapOptionalAndFieldSetter(t *testing.T) {
	s := NewSchema[item]()
	Field(s, "SKU", func(it *item) *string { return &it.SKU }, Text)
	Field(s, "Price", func(it *item) *decimal.Decimal { return &it.Price }, Decimal)
	Field(s, "Qty", func(it *item) **int { return &it.Qty }, Optional(Int))
	Field(s, "Due", func(it *item) *time.Time { return &it.Due }, Time())
	assert.Equal(t, []string{"SKU", "Price", "Qty", "Due"}, s.Fields())

	got, err := Map(s, table(
		[]string{"SKU", "Price", "Qty", "Due", "Colour"},
		[]string{"X1", "9.99", "", "2024/3/9 00:00:00", "red"},
		[]string{"X2", "10", "3", "2024-03-10", ""},
	))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "X1", got[0].SKU)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("9.99")))
	assert.Nil(t, got[0].Qty)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got[0].Due)
	assert.Equal(t, map[string]string{"Colour": "red"}, got[0].Extra)

	require.NotNil(t, got[1].Qty)
	assert.Equal(t, 3, *got[1].Qty)
	assert.Equal(t, 10, got[1].Due.Day())
}

func TestConverters(t *testing.T) {
	tests := []struct {
		name string
		conv func(string) (any, error)
		in   string
		want any
	}{
		{"int", wrap(Int), "42", 42},
		{"int whole decimal", wrap(Int), "30.0", 30},
		{"int64 negative", wrap(Int64), "-7", int64(-7)},
		{"uint", wrap(Uint), "7", uint64(7)},
		{"float", wrap(Float), "2.5", 2.5},
		{"bool TRUE", wrap(Bool), "TRUE", true},
		{"bool FALSE", wrap(Bool), "FALSE", false},
		{"text", wrap(Text), " keep ", " keep "},
	}
	for _, tt := range tests {
		got, err := tt.conv(tt.in)
		if assert.NoError(t, err, tt.name) {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}

	for _, bad := range []struct {
		name string
		conv func(string) (any, error)
		in   string
	}{
		{"int fraction", wrap(Int), "1.5"},
		{"int text", wrap(Int), "abc"},
		{"uint negative", wrap(Uint), "-1"},
		{"float text", wrap(Float), "x"},
		{"bool yes", wrap(Bool), "yes"},
		{"decimal", wrap(Decimal), "1,5"},
		{"time", wrap(Time("2006-01-02")), "09.03.2024"},
	} {
		_, err := bad.conv(bad.in)
		assert.ErrorIs(t, err, ErrUnsupportedConversion, bad.name)
	}
}

func wrap[V any](conv Converter[V]) func(string) (any, error) {
	return func(s string) (any, error) {
		v, err := conv(s)
		return v, err
	}
}
