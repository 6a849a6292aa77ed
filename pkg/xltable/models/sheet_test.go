package models

import (
	"reflect"
	"testing"
)

func TestColumnValues(t *testing.T) {
	table := NewTable("People")
	table.AddColumn("A")
	table.AddColumn("B")
	table.Rows = []Row{
		{Number: 1, Cells: map[string]string{"A": "Name", "B": "Age"}},
		{Number: 2, Cells: map[string]string{"A": "Alice"}},
		{Number: 3, Cells: map[string]string{"A": "Bob", "B": ""}},
	}

	if got := table.ColumnValues("B"); !reflect.DeepEqual(got, []string{"Age", ""}) {
		t.Errorf("ColumnValues(B) = %v, expected [Age \"\"]", got)
	}
	if got := table.ColumnValues("Z"); got != nil {
		t.Errorf("ColumnValues(Z) = %v, expected nil", got)
	}
}
