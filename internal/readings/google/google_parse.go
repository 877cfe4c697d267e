package google

import (
	"fmt"
	"strings"

	"weatherman/internal/core"
	"weatherman/internal/readings"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// readings. The first row is the header. Rows that fail to parse are counted
// in skipped.
func parseValues(values [][]interface{}) (out []core.Reading, skipped int) {
	if len(values) < 2 {
		return nil, 0
	}
	for _, row := range values[1:] {
		r, err := readings.ParseRow(toStrings(row))
		if err != nil {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

// toStrings formats cells; the API may return numbers or strings.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
