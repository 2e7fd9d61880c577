package common

import (
	"strconv"
	"strings"
)

var timeUnits = []struct {
	name   string
	factor float64 // size of the next larger unit in this unit
}{
	{"s", 60},
	{"min", 60},
	{"h", 24},
	{"d", 365.25},
	{"yr", 0},
}

// Time2Human formats a duration in seconds with three significant digits in the
// largest unit that keeps the value at or above one, e.g. "45 s", "15 min".
func Time2Human(seconds float64) string {
	value := seconds
	for i, u := range timeUnits {
		if u.factor == 0 || value < u.factor || i == len(timeUnits)-1 {
			return strconv.FormatFloat(value, 'g', 3, 64) + " " + u.name
		}
		value /= u.factor
	}
	return strconv.FormatFloat(seconds, 'g', 3, 64) + " s"
}

// FormatThousands writes n with comma thousands separators, e.g. "1,234,567".
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
