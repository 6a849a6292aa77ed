// Package output renders projected workbooks as JSON.
package output

import (
	"github.com/goccy/go-json"

	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

// ToJSON encodes every table of ds.
func ToJSON(ds *models.DataSet, pretty bool) ([]byte, error) {
	return marshal(ds, pretty)
}

// TableToJSON encodes a single table.
func TableToJSON(t *models.Table, pretty bool) ([]byte, error) {
	return marshal(t, pretty)
}

// ViewToJSON encodes a range view.
func ViewToJSON(v *models.RangeView, pretty bool) ([]byte, error) {
	return marshal(v, pretty)
}

// RecordsToJSON encodes a slice of records, e.g. mapped rows or column summaries.
func RecordsToJSON[T any](records []T, pretty bool) ([]byte, error) {
	return marshal(records, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
