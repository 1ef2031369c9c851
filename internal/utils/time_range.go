package utils

import (
	"fmt"
	"strings"
	"time"

	apperrors "quickpark/internal/errors"
)

// Layouts accepted for instants at the HTTP boundary. Values without an
// offset (datetime-local inputs) are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseInstant parses a timestamp sent by a client.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: malformed timestamp %q", apperrors.ErrInvalidRange, s)
}

// ParseRange parses both ends of a half-open interval and checks end > start.
func ParseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := ParseInstant(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseInstant(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ValidateRange rejects zero instants and intervals where end is not after start.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: missing timestamp", apperrors.ErrInvalidRange)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end %s is not after start %s", apperrors.ErrInvalidRange,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) share any instant.
// Intervals that only touch at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
