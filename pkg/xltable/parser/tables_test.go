package parser

import (
	"reflect"
	"testing"

	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

func tableOf(rows ...map[string]string) *models.Table {
	t := models.NewTable("S")
	for i, cells := range rows {
		r := models.NewRow(i + 2)
		for col, v := range cells {
			t.AddColumn(col)
			r.Cells[col] = v
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

func TestDetectTables(t *testing.T) {
	table := tableOf(
		map[string]string{"B": "Name", "C": "Age"},
		map[string]string{"B": "Alice", "C": "30"},
		map[string]string{"B": "Bob", "D": ""},
	)

	got := DetectTables(table, DefaultTableParams())
	if !reflect.DeepEqual(got, []string{"B2:C4"}) {
		t.Errorf("DetectTables = %v, expected [B2:C4]", got)
	}
}

func TestDetectTablesThresholds(t *testing.T) {
	sparse := tableOf(map[string]string{"A": "x"}, map[string]string{"B": "y"})
	if got := DetectTables(sparse, DefaultTableParams()); got != nil {
		t.Errorf("Expected no candidates below MinNonemptyCells, got %v", got)
	}

	if got := DetectTables(nil, DefaultTableParams()); got != nil {
		t.Errorf("Expected no candidates for nil table, got %v", got)
	}

	params := DefaultTableParams()
	params.DensityMin = 0.9
	diagonal := tableOf(map[string]string{"A": "1"}, map[string]string{"B": "2"}, map[string]string{"C": "3"})
	if got := DetectTables(diagonal, params); got != nil {
		t.Errorf("Expected density filter to reject diagonal data, got %v", got)
	}
}
