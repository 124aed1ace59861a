// Package dms converts between GNIS degrees-minutes-seconds strings and
// signed whole seconds of arc.
//
// Latitudes are seven characters, DDMMSS followed by N or S. Longitudes are
// eight, DDDMMSS followed by E or W. South and west are negative.
package dms

import (
	"fmt"
	"strconv"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
)

// Unknown is the GNIS placeholder for a missing coordinate.
const Unknown = "Unknown"

const (
	latitudeLen  = 7
	longitudeLen = 8
)

// ErrMissing is returned for empty or Unknown values. Match it with errors.Is.
var ErrMissing = gisErrors.NewValidationError(gisErrors.CodeMissingValue, "coordinate missing")

// IsMissing reports whether s carries no coordinate.
func IsMissing(s string) bool {
	return s == "" || s == Unknown
}

// ParseLatitude converts "DDMMSS[N|S]" to seconds.
func ParseLatitude(s string) (int64, error) {
	if IsMissing(s) {
		return 0, ErrMissing
	}
	if len(s) != latitudeLen {
		return 0, invalid(s, "latitude must be 7 characters")
	}
	return parse(s, 2, 90, 'N', 'S')
}

// ParseLongitude converts "DDDMMSS[E|W]" to seconds.
func ParseLongitude(s string) (int64, error) {
	if IsMissing(s) {
		return 0, ErrMissing
	}
	if len(s) != longitudeLen {
		return 0, invalid(s, "longitude must be 8 characters")
	}
	return parse(s, 3, 180, 'E', 'W')
}

// Parse dispatches on length: 7 characters is a latitude, 8 a longitude.
func Parse(s string) (int64, error) {
	switch {
	case IsMissing(s):
		return 0, ErrMissing
	case len(s) == latitudeLen:
		return ParseLatitude(s)
	case len(s) == longitudeLen:
		return ParseLongitude(s)
	default:
		return 0, invalid(s, "expected 7 or 8 characters")
	}
}

func parse(s string, degDigits int, maxDeg int64, pos, neg byte) (int64, error) {
	deg, err := digits(s[:degDigits])
	if err != nil {
		return 0, invalid(s, "degrees are not numeric")
	}
	mins, err := digits(s[degDigits : degDigits+2])
	if err != nil {
		return 0, invalid(s, "minutes are not numeric")
	}
	sec, err := digits(s[degDigits+2 : degDigits+4])
	if err != nil {
		return 0, invalid(s, "seconds are not numeric")
	}
	if mins > 59 || sec > 59 {
		return 0, invalid(s, "minutes and seconds must be below 60")
	}
	total := deg*3600 + mins*60 + sec
	if total > maxDeg*3600 {
		return 0, invalid(s, fmt.Sprintf("exceeds %d degrees", maxDeg))
	}

	switch s[len(s)-1] {
	case pos:
		return total, nil
	case neg:
		return -total, nil
	default:
		return 0, invalid(s, fmt.Sprintf("hemisphere must be %c or %c", pos, neg))
	}
}

func digits(s string) (int64, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

func invalid(s, reason string) error {
	return gisErrors.NewValidationError(gisErrors.CodeInvalidCoordinate,
		fmt.Sprintf("%q: %s", s, reason))
}

// FormatLatitude renders a DMS latitude as "38d 28m 56s North".
// Unknown and malformed values are returned unchanged.
func FormatLatitude(s string) string {
	v, err := ParseLatitude(s)
	if err != nil {
		return s
	}
	return FormatSeconds(v, true)
}

// FormatLongitude renders a DMS longitude as "79d 30m 31s West".
// Unknown and malformed values are returned unchanged.
func FormatLongitude(s string) string {
	v, err := ParseLongitude(s)
	if err != nil {
		return s
	}
	return FormatSeconds(v, false)
}

// FormatSeconds renders signed seconds in the readable form used by reports.
func FormatSeconds(total int64, latitude bool) string {
	var hemi string
	switch {
	case latitude && total < 0:
		hemi = "South"
	case latitude:
		hemi = "North"
	case total < 0:
		hemi = "West"
	default:
		hemi = "East"
	}
	if total < 0 {
		total = -total
	}
	return fmt.Sprintf("%dd %dm %ds %s", total/3600, total/60%60, total%60, hemi)
}
