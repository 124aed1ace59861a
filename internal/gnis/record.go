// Package gnis parses pipe-delimited GNIS feature records.
package gnis

import (
	"fmt"
	"strings"

	"github.com/gisdb/gisdb/internal/dms"
	gisErrors "github.com/gisdb/gisdb/internal/errors"
	"github.com/gisdb/gisdb/pkg/types"
)

// Delimiter separates record fields.
const Delimiter = "|"

// Field positions in a GNIS line.
const (
	FieldFeatureID = iota
	FieldName
	FieldClass
	FieldStateAlpha
	FieldStateNumeric
	FieldCountyName
	FieldCountyNumeric
	FieldPrimaryLatDMS
	FieldPrimaryLongDMS

	// MinFields is the number of leading fields every record must carry.
	MinFields
)

// Record is one parsed feature line. Fields holds every column as read.
type Record struct {
	FeatureID      string
	Name           string
	Class          string
	StateAlpha     string
	StateNumeric   string
	CountyName     string
	CountyNumeric  string
	PrimaryLatDMS  string
	PrimaryLongDMS string
	Fields         []string
}

// Parse splits a record line. Trailing CR/LF are ignored.
func Parse(line string) (*Record, error) {
	line = strings.TrimRight(line, "\r\n")
	f := strings.Split(line, Delimiter)
	if len(f) < MinFields {
		return nil, gisErrors.NewValidationError(gisErrors.CodeInvalidRecord,
			fmt.Sprintf("record has %d fields, need at least %d", len(f), MinFields)).
			WithDetails(map[string]interface{}{"fields": len(f)})
	}
	return &Record{
		FeatureID:      f[FieldFeatureID],
		Name:           f[FieldName],
		Class:          f[FieldClass],
		StateAlpha:     f[FieldStateAlpha],
		StateNumeric:   f[FieldStateNumeric],
		CountyName:     f[FieldCountyName],
		CountyNumeric:  f[FieldCountyNumeric],
		PrimaryLatDMS:  f[FieldPrimaryLatDMS],
		PrimaryLongDMS: f[FieldPrimaryLongDMS],
		Fields:         f,
	}, nil
}

// Key returns the name index key for the record.
func (r *Record) Key() types.NameKey {
	return types.NewNameKey(r.Name, r.StateAlpha)
}

// Coordinate returns the primary location in seconds. It reports false when
// either component is missing or malformed.
func (r *Record) Coordinate() (types.Coordinate, bool) {
	lat, err := dms.ParseLatitude(r.PrimaryLatDMS)
	if err != nil {
		return types.Coordinate{}, false
	}
	long, err := dms.ParseLongitude(r.PrimaryLongDMS)
	if err != nil {
		return types.Coordinate{}, false
	}
	return types.NewCoordinate(long, lat), true
}
