// Package stats summarises the numeric columns of a projected table.
package stats

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/ukaji3/xltable-go/pkg/xltable/models"
)

// ColumnSummary describes one column. The numeric fields are set only when
// Numeric is non-zero.
type ColumnSummary struct {
	Column  string  `json:"column"`
	Header  string  `json:"header,omitempty"`
	Count   int     `json:"count"`
	Numeric int     `json:"numeric"`
	Mean    float64 `json:"mean,omitempty"`
	StdDev  float64 `json:"std_dev,omitempty"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Median  float64 `json:"median,omitempty"`
	Q25     float64 `json:"q25,omitempty"`
	Q75     float64 `json:"q75,omitempty"`
}

// Describe summarises every column of t in column order. With header set, the
// first row names the columns and is left out of the figures.
func Describe(t *models.Table, header bool) ([]ColumnSummary, error) {
	if t == nil {
		return nil, nil
	}
	body := *t
	var head models.Row
	if header && len(body.Rows) > 0 {
		head, body.Rows = body.Rows[0], body.Rows[1:]
	}

	out := make([]ColumnSummary, 0, len(t.Columns))
	for _, col := range t.Columns {
		s := ColumnSummary{Column: col}
		s.Header, _ = head.Get(col)

		var data stats.Float64Data
		for _, v := range body.ColumnValues(col) {
			if v == "" {
				continue
			}
			s.Count++
			if d, err := decimal.NewFromString(v); err == nil {
				data = append(data, d.InexactFloat64())
			}
		}
		s.Numeric = len(data)
		if len(data) > 0 {
			if err := summarise(&s, data); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func summarise(s *ColumnSummary, data stats.Float64Data) error {
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return err
	}
	if s.Q25, err = stats.Percentile(data, 25); err != nil {
		return err
	}
	if s.Q75, err = stats.Percentile(data, 75); err != nil {
		return err
	}
	return nil
}
