// Package address parses and formats spreadsheet cell addresses such as "B7".
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMalformedAddress indicates an address without a column or row component,
// or with characters outside [A-Za-z0-9].
var ErrMalformedAddress = errors.New("malformed cell address")

// Parse splits an address into its column letters and row number.
// The column is returned uppercased and leading zeros of the row are dropped.
func Parse(addr string) (string, int, error) {
	split := strings.IndexFunc(addr, isDigit)
	if split <= 0 {
		return "", 0, malformed(addr)
	}
	col, rowStr := addr[:split], addr[split:]
	for _, r := range col {
		if !isLetter(r) {
			return "", 0, malformed(addr)
		}
	}
	for _, r := range rowStr {
		if !isDigit(r) {
			return "", 0, malformed(addr)
		}
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil || row < 1 {
		return "", 0, malformed(addr)
	}
	return strings.ToUpper(col), row, nil
}

// Format joins column letters and a row number into an address.
func Format(col string, row int) (string, error) {
	addr, err := excelize.JoinCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	return addr, nil
}

// Canonicalize returns addr with an uppercase column and no leading zeros.
func Canonicalize(addr string) (string, error) {
	col, row, err := Parse(addr)
	if err != nil {
		return "", err
	}
	return Format(col, row)
}

// Column returns the column letters of addr.
func Column(addr string) (string, error) {
	col, _, err := Parse(addr)
	return col, err
}

// ColumnIndex converts column letters to a 1-based column number.
func ColumnIndex(col string) (int, error) {
	n, err := excelize.ColumnNameToNumber(col)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	return n, nil
}

// ColumnName converts a 1-based column number to its letters.
func ColumnName(n int) (string, error) {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	return name, nil
}

func malformed(addr string) error {
	return fmt.Errorf("%w: %q", ErrMalformedAddress, addr)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
