package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// seriesColumns is the fixed width of the monthly series file:
// year;month;fractional date;mean;std dev;observations;provisional.
const seriesColumns = 7

// Record is one monthly observation.
type Record struct {
	Year         int
	Month        int
	Date         float64 // fractional year, middle of the month
	Mean         float64
	StdDev       float64
	Observations int
	Provisional  bool
}

// Missing reports whether the provider marked the mean as unavailable (-1).
func (r Record) Missing() bool { return r.Mean < 0 }

// LoadSeries reads a semicolon-delimited monthly series file.
func LoadSeries(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	recs, err := ParseSeries(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return recs, nil
}

// ParseSeries parses series records from r. Fields may be space padded.
func ParseSeries(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	var out []Record
	line := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) != seriesColumns {
			return nil, errors.Errorf("line %d: got %d columns, want %d", line, len(fields), seriesColumns)
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, errors.New("no records")
	}
	return out, nil
}

func parseRecord(f []string) (Record, error) {
	var (
		rec Record
		err error
	)
	if rec.Year, err = strconv.Atoi(strings.TrimSpace(f[0])); err != nil {
		return rec, errors.Wrap(err, "year")
	}
	if rec.Month, err = strconv.Atoi(strings.TrimSpace(f[1])); err != nil {
		return rec, errors.Wrap(err, "month")
	}
	if rec.Month < 1 || rec.Month > 12 {
		return rec, errors.Errorf("month %d out of range", rec.Month)
	}
	if rec.Date, err = strconv.ParseFloat(strings.TrimSpace(f[2]), 64); err != nil {
		return rec, errors.Wrap(err, "date")
	}
	if rec.Mean, err = strconv.ParseFloat(strings.TrimSpace(f[3]), 64); err != nil {
		return rec, errors.Wrap(err, "mean")
	}
	if rec.StdDev, err = strconv.ParseFloat(strings.TrimSpace(f[4]), 64); err != nil {
		return rec, errors.Wrap(err, "std dev")
	}
	if rec.Observations, err = strconv.Atoi(strings.TrimSpace(f[5])); err != nil {
		return rec, errors.Wrap(err, "observations")
	}
	switch strings.TrimSpace(f[6]) {
	case "0":
	case "1":
		rec.Provisional = true
	default:
		return rec, errors.Errorf("provisional flag %q", f[6])
	}
	return rec, nil
}

// Series returns the aligned (date, mean) arrays, skipping missing months
// and anything dated before since.
func Series(recs []Record, since float64) (t, y []float64) {
	t = make([]float64, 0, len(recs))
	y = make([]float64, 0, len(recs))
	for _, r := range recs {
		if r.Missing() || r.Date < since {
			continue
		}
		t = append(t, r.Date)
		y = append(y, r.Mean)
	}
	return t, y
}
