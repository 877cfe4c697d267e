package readings

import (
	"errors"
	"fmt"
	"strings"

	"weatherman/internal/core"
)

// Column offsets of a daily weather row. Humidity columns sit three places
// to the right of the reading field order because dew point columns come
// first in the source files.
const (
	ColDate         = 0
	ColMaxTemp      = 1
	ColMeanTemp     = 2
	ColMinTemp      = 3
	ColMaxHumidity  = 7
	ColMeanHumidity = 8
	ColMinHumidity  = 9

	// MinColumns is the number of fields a row needs to reach ColMinHumidity.
	MinColumns = ColMinHumidity + 1
)

var (
	ErrBlankRow = errors.New("blank row")
	ErrShortRow = errors.New("row has too few columns")
)

// ParseLine splits a comma-separated line and parses it with ParseRow.
func ParseLine(line string) (core.Reading, error) {
	if strings.TrimSpace(line) == "" {
		return core.Reading{}, ErrBlankRow
	}
	return ParseRow(strings.Split(strings.TrimRight(line, "\r\n"), ","))
}

// ParseRow converts raw fields into a Reading. Numeric fields that do not
// parse become missing; a bad date or a short row is an error so the caller
// can drop the row.
func ParseRow(fields []string) (core.Reading, error) {
	if isBlank(fields) {
		return core.Reading{}, ErrBlankRow
	}
	if len(fields) < MinColumns {
		return core.Reading{}, fmt.Errorf("%w: got %d, need %d", ErrShortRow, len(fields), MinColumns)
	}
	date, err := core.ParseDate(fields[ColDate])
	if err != nil {
		return core.Reading{}, err
	}
	return core.Reading{
		Date:         date,
		MaxTemp:      core.ParseMeasurement(fields[ColMaxTemp]),
		MeanTemp:     core.ParseMeasurement(fields[ColMeanTemp]),
		MinTemp:      core.ParseMeasurement(fields[ColMinTemp]),
		MaxHumidity:  core.ParseMeasurement(fields[ColMaxHumidity]),
		MeanHumidity: core.ParseMeasurement(fields[ColMeanHumidity]),
		MinHumidity:  core.ParseMeasurement(fields[ColMinHumidity]),
	}, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
