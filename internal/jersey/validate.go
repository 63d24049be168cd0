package jersey

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"jersey-bot/internal/models"
)

const (
	maxShirtNumber   = 999
	maxShirtName     = 15
	maxDesignName    = 100
	designDescBrief  = 50
	voteChoicePrefix = "vote:"
	sizeChoicePrefix = "size:"
)

var upper = cases.Upper(language.Und)

func ValidateFullName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.Wrap(ErrInvalidInput, "full name is empty")
	}
	return s, nil
}

// ParseShirtNumber accepts ASCII digits only, in [0, 999].
func ParseShirtNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(ErrInvalidInput, "shirt number is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.Wrapf(ErrInvalidInput, "shirt number %q is not a number", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > maxShirtNumber {
		return 0, errors.Wrapf(ErrInvalidInput, "shirt number %q out of range", s)
	}
	return n, nil
}

// NormalizeShirtName trims and upper-cases s; the result must be 1-15 characters.
func NormalizeShirtName(s string) (string, error) {
	s = upper.String(strings.TrimSpace(s))
	if n := utf8.RuneCountInString(s); n == 0 || n > maxShirtName {
		return "", errors.Wrapf(ErrInvalidInput, "shirt name must be 1-%d characters", maxShirtName)
	}
	return s, nil
}

func ValidateDesignName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n == 0 || n > maxDesignName {
		return "", errors.Wrapf(ErrInvalidInput, "design name must be 1-%d characters", maxDesignName)
	}
	return s, nil
}

// ParseDeadline reads "YYYY-MM-DD HH:MM" in loc.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(models.DateLayout, strings.Join(strings.Fields(s), " "), loc)
	if err != nil {
		return time.Time{}, errors.WithSecondaryError(errors.Wrapf(ErrInvalidFormat, "parse deadline %q", s), err)
	}
	return t, nil
}

func parseVoteChoice(data string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, voteChoicePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDesignID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
