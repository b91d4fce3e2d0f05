package media

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// reDecimal is the only bare-number form accepted: no sign, exponent or
// hex prefix.
var reDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

var (
	errEmpty        = errors.New("empty value")
	errZeroDenom    = errors.New("zero denominator")
	errNegativeRate = errors.New("negative rate")
	errUnknownRate  = errors.New("rate unknown")
)

// ParseRate evaluates a frame-rate field. "N/D" is split on the slash,
// both sides parsed as integers and divided as float64, so "30000/1001"
// yields 29.97002997... and "25/1" exactly 25. A bare decimal ("30",
// "29.97") is parsed as a float. ffprobe's "0/0" (unknown) is an error.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}

	num, den, isFraction := strings.Cut(s, "/")
	if !isFraction {
		if !reDecimal.MatchString(s) {
			return 0, fmt.Errorf("%q is not a decimal: %w", s, strconv.ErrSyntax)
		}
		return strconv.ParseFloat(s, 64)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, errZeroDenom
	}
	if n < 0 || d < 0 {
		return 0, errNegativeRate
	}
	return float64(n) / float64(d), nil
}
