package normalize

import (
	"strconv"
	"strings"
	"time"
)

// excelEpoch is day zero of the 1900 date system as used by every workbook
// this system reads (1899-12-30 absorbs the Lotus leap-year bug).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
}

// ParseDate converts a workbook cell into a time. Cells arrive as Excel
// serial numbers ("45322", "45322.5", "45322,5") or as Brazilian-format
// text; day-first is assumed for ambiguous text. Unparseable or empty input
// yields the zero time, never an error: a bad date excludes a row from
// date-constrained matching but must not abort the batch.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	// Excel serial first: a pure number is never a textual date.
	if serial, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		if serial <= 0 {
			return time.Time{}
		}
		days := int(serial)
		frac := serial - float64(days)
		t := excelEpoch.AddDate(0, 0, days)
		return t.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}

	// Text with a trailing time fragment in a shape we did not anticipate:
	// retry on the date part alone.
	if cut, _, found := strings.Cut(s, " "); found {
		for _, layout := range []string{"02/01/2006", "2006-01-02", "02-01-2006"} {
			if t, err := time.ParseInLocation(layout, cut, time.UTC); err == nil {
				return t
			}
		}
	}

	return time.Time{}
}

// ParseVolume converts a quantity cell into liters. Decimal commas are
// accepted and any unit suffix or thousands separator is dropped.
// Unparseable input yields 0.
func ParseVolume(s string) float64 {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return 0
	}
	// A second dot means the first ones were thousands separators.
	if strings.Count(clean, ".") > 1 {
		last := strings.LastIndex(clean, ".")
		clean = strings.ReplaceAll(clean[:last], ".", "") + clean[last:]
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatDate renders a time the way the workbooks expect (dd/mm/yyyy), or
// "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
