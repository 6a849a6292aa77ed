package output

import (
	"strings"
	"testing"

	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

func sampleTable() *models.Table {
	t := models.NewTable("People")
	t.AddColumn("A")
	t.AddColumn("B")
	r := models.NewRow(1)
	r.Cells["A"] = "Alice"
	t.Rows = append(t.Rows, r)
	return t
}

func TestTableToJSON(t *testing.T) {
	data, err := TableToJSON(sampleTable(), false)
	if err != nil {
		t.Fatalf("TableToJSON failed: %v", err)
	}
	expected := `{"name":"People","columns":["A","B"],"rows":[{"r":1,"c":{"A":"Alice"}}]}`
	if string(data) != expected {
		t.Errorf("TableToJSON = %s, expected %s", data, expected)
	}
}

func TestToJSONPretty(t *testing.T) {
	ds := &models.DataSet{BookName: "book.xlsx", Tables: []*models.Table{sampleTable()}}
	ds.Tables[0].TableCandidates = []string{"A1:B1"}

	data, err := ToJSON(ds, true)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"\n  \"book_name\": \"book.xlsx\"", `"table_candidates": [`, `"A1:B1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestRecordsToJSON(t *testing.T) {
	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	data, err := RecordsToJSON([]person{{"Alice", 30}}, false)
	if err != nil {
		t.Fatalf("RecordsToJSON failed: %v", err)
	}
	if string(data) != `[{"name":"Alice","age":30}]` {
		t.Errorf("RecordsToJSON = %s", data)
	}
}
