package dashboard

import (
	"fmt"
	"strings"
)

// NormalizeTime turns free-form schedule time input into "H:MM" or
// "H:MM AM/PM":
//
//	"5"      -> "5:00"
//	"530"    -> "5:30"
//	"5:30"   -> "5:30"
//	"5:30pm" -> "5:30 PM"
//
// Anything that cannot be read as a time comes back unchanged, so a user's
// odd entry ("after lunch") survives as typed.
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}

	body := strings.ToLower(s)
	suffix := ""
	switch {
	case strings.HasSuffix(body, "am"):
		suffix = "AM"
		body = body[:len(body)-2]
	case strings.HasSuffix(body, "pm"):
		suffix = "PM"
		body = body[:len(body)-2]
	case strings.HasSuffix(body, "a"):
		suffix = "AM"
		body = body[:len(body)-1]
	case strings.HasSuffix(body, "p"):
		suffix = "PM"
		body = body[:len(body)-1]
	}
	body = strings.TrimSpace(body)

	hour, minute, ok := readClockDigits(body)
	if !ok {
		return raw
	}
	if suffix != "" && (hour < 1 || hour > 12) {
		return raw
	}
	if suffix == "" && hour > 23 {
		return raw
	}

	out := fmt.Sprintf("%d:%02d", hour, minute)
	if suffix != "" {
		out += " " + suffix
	}
	return out
}

// readClockDigits accepts "H", "HH", "HMM", "HHMM", and "H:MM" forms.
func readClockDigits(body string) (int, int, bool) {
	if body == "" {
		return 0, 0, false
	}

	if h, m, found := strings.Cut(body, ":"); found {
		hour, ok1 := atoiStrict(h)
		minute, ok2 := atoiStrict(m)
		if !ok1 || !ok2 || len(m) != 2 || minute > 59 {
			return 0, 0, false
		}
		return hour, minute, true
	}

	digits, ok := atoiStrict(body)
	if !ok {
		return 0, 0, false
	}
	switch len(body) {
	case 1, 2:
		return digits, 0, true
	case 3:
		return digits / 100, digits % 100, digits%100 <= 59
	case 4:
		return digits / 100, digits % 100, digits%100 <= 59
	default:
		return 0, 0, false
	}
}

func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
