package google

import (
	"fmt"
	"strconv"
	"strings"

	ports "fatture/internal/sheets"
)

// findRow returns the 1-based sheet row whose first cell equals id, or 0.
// The header row never matches.
func findRow(values [][]any, id string) int {
	if id == "" {
		return 0
	}
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func rowRange(n int) string {
	return fmt.Sprintf("A%d:I%d", n, n)
}

func headerValues() []any {
	out := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}

// lastRowOf returns the last row number of an A1 range such as
// "'Invoices'!A5:I5", or 0 when there is none.
func lastRowOf(a1 string) int {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.LastIndex(a1, ":"); i >= 0 {
		a1 = a1[i+1:]
	}
	digits := strings.TrimLeftFunc(a1, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
