package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"market-dashboard/models"
)

var (
	// numberRegexp captures the first signed number, with "." or "," separators
	numberRegexp = regexp.MustCompile(`-?\d[\d.,]*`)
	// groupedRegexp matches a bare Brazilian-grouped integer such as "350.000"
	groupedRegexp = regexp.MustCompile(`^-?[1-9]\d{0,2}(?:\.\d{3})+$`)
	// periodRegexps accept YYYYMM, YYYYMM.0, YYYY-MM and MM/YYYY
	periodCompact = regexp.MustCompile(`^(\d{4})(\d{2})(?:\.0+)?$`)
	periodDashed  = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	periodSlashed = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
)

// parseNumber extracts a number from a cell. It understands Brazilian
// ("1.234,56") and US ("1,234.56") grouping and currency prefixes. A single
// dot followed by exactly three digits is always grouping, with or without a
// prefix: "350.000" and "R$ 350.000" are both 350000. ok is false for blanks
// and text without digits.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if groupedRegexp.MatchString(raw) {
		raw = strings.ReplaceAll(raw, ".", "")
	}
	// raw spreadsheet values are plain Go-parsable numbers
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}

	neg := strings.HasPrefix(match, "-")
	digits := strings.TrimPrefix(match, "-")
	digits = strings.TrimRight(digits, ".,")

	lastDot := strings.LastIndex(digits, ".")
	lastComma := strings.LastIndex(digits, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// the right-most separator is the decimal one
		if lastComma > lastDot {
			digits = strings.ReplaceAll(digits, ".", "")
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(digits, ",") == 1 && len(digits)-lastComma-1 != 3 {
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case lastDot >= 0:
		// "350.000" is grouping, "12.5" and "202101.0" are decimals
		if strings.Count(digits, ".") > 1 || (len(digits)-lastDot-1 == 3 && !strings.HasPrefix(digits, "0")) {
			digits = strings.ReplaceAll(digits, ".", "")
		}
	}

	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// parsePeriod parses a YYYYMM period cell.
func parsePeriod(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)

	var year, month int
	if m := periodCompact.FindStringSubmatch(raw); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
	} else if m := periodDashed.FindStringSubmatch(raw); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
	} else if m := periodSlashed.FindStringSubmatch(raw); m != nil {
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
	} else {
		return 0, false
	}

	if year < 1900 || year > 2999 {
		return 0, false
	}
	p := year*100 + month
	if !models.ValidPeriod(p) {
		return 0, false
	}
	return p, true
}

// parseRooms maps a room-count cell to its bucket. Counts of four or more
// collapse into "4+".
func parseRooms(raw string) models.RoomBucket {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.RoomsUnknown
	}
	if strings.HasSuffix(raw, "+") {
		return models.RoomsFourUp
	}
	v, ok := parseNumber(raw)
	if !ok || v < 0 || v != math.Trunc(v) {
		return models.RoomsUnknown
	}
	if v >= 4 {
		return models.RoomsFourUp
	}
	return models.RoomBucket(strconv.Itoa(int(v)))
}
