/*
parse.go - Strict coercion boundary between the store and the engine

PURPOSE:
  Record stores are tolerant by contract: numeric fields may come back as
  text or floating point (spreadsheet-heritage data), and missing fields
  default to zero. This file is the single place where that loose data is
  coerced into a strongly-typed ActivityRecord. Everything downstream of
  DecodeRecords sees only typed records.

FAIL-SOFT:
  A row that cannot be coerced yields a MalformedRecordError. The
  aggregator skips such rows - they vanish from computed totals, not from
  the store, so the user can still see and delete them.
*/
package pay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW RECORD - Row as the store hands it over, all fields loose
// =============================================================================

// RawRecord is an activity record as read from the store, before
// coercion. Every field is a string; empty means absent.
type RawRecord struct {
	ID          string
	Owner       string
	Date        string
	Kind        string
	StartHour   string
	StartMinute string
	EndHour     string
	EndMinute   string
	DistanceKm  string
	Adjustment  string
}

// =============================================================================
// COERCION
// =============================================================================

// ParseRecord coerces one raw row into a typed ActivityRecord.
func ParseRecord(raw RawRecord) (ActivityRecord, error) {
	id, err := coerceInt(raw.ID)
	if err != nil {
		return ActivityRecord{}, &MalformedRecordError{Field: "id", Value: raw.ID, Err: err}
	}

	fail := func(field, value string, err error) (ActivityRecord, error) {
		return ActivityRecord{}, &MalformedRecordError{RecordID: id, Field: field, Value: value, Err: err}
	}

	kind := Kind(strings.ToUpper(strings.TrimSpace(raw.Kind)))
	if !kind.Valid() {
		return fail("kind", raw.Kind, ErrUnknownKind)
	}

	date, err := ParseDate(strings.TrimSpace(raw.Date))
	if err != nil {
		return fail("date", raw.Date, err)
	}

	rec := ActivityRecord{ID: id, Owner: raw.Owner, Date: date, Kind: kind}

	if kind.Interval() {
		if rec.Start.Hour, err = coerceSmallInt(raw.StartHour); err != nil {
			return fail("start_hour", raw.StartHour, err)
		}
		if rec.Start.Minute, err = coerceSmallInt(raw.StartMinute); err != nil {
			return fail("start_minute", raw.StartMinute, err)
		}
		if rec.End.Hour, err = coerceSmallInt(raw.EndHour); err != nil {
			return fail("end_hour", raw.EndHour, err)
		}
		if rec.End.Minute, err = coerceSmallInt(raw.EndMinute); err != nil {
			return fail("end_minute", raw.EndMinute, err)
		}
		if !rec.Start.Valid() || !rec.End.Valid() || rec.Start.Minutes() >= rec.End.Minutes() {
			return fail("time", fmt.Sprintf("%s-%s", rec.Start, rec.End), ErrStartNotBeforeEnd)
		}
	}

	if rec.DistanceKm, err = coerceDecimal(raw.DistanceKm); err != nil {
		return fail("distance_km", raw.DistanceKm, err)
	}
	if rec.DistanceKm.IsNegative() {
		return fail("distance_km", raw.DistanceKm, fmt.Errorf("negative distance"))
	}
	if rec.Adjustment, err = coerceInt(raw.Adjustment); err != nil {
		return fail("adjustment", raw.Adjustment, err)
	}

	return rec, nil
}

// DecodeRecords coerces a full result set, splitting it into the typed
// records and the coercion failures. Failures never abort the batch.
func DecodeRecords(raws []RawRecord) ([]ActivityRecord, []*MalformedRecordError) {
	records := make([]ActivityRecord, 0, len(raws))
	var malformed []*MalformedRecordError
	for _, raw := range raws {
		rec, err := ParseRecord(raw)
		if err != nil {
			var me *MalformedRecordError
			if errors.As(err, &me) {
				malformed = append(malformed, me)
			}
			continue
		}
		records = append(records, rec)
	}
	return records, malformed
}

// EncodeRecord renders a typed record back into the loose row shape.
// Stores use this for round-tripping; readAll(append(r)) must return
// every field unchanged except the assigned id.
func EncodeRecord(r ActivityRecord) RawRecord {
	return RawRecord{
		ID:          strconv.FormatInt(r.ID, 10),
		Owner:       r.Owner,
		Date:        r.Date.String(),
		Kind:        string(r.Kind),
		StartHour:   strconv.Itoa(r.Start.Hour),
		StartMinute: strconv.Itoa(r.Start.Minute),
		EndHour:     strconv.Itoa(r.End.Hour),
		EndMinute:   strconv.Itoa(r.End.Minute),
		DistanceKm:  r.DistanceKm.String(),
		Adjustment:  strconv.FormatInt(r.Adjustment, 10),
	}
}

// =============================================================================
// FIELD COERCION HELPERS
// =============================================================================

// coerceInt accepts "", "42", "42.0" and floating-point text, truncating
// toward zero. Empty input defaults to zero per the store contract.
func coerceInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Truncate(0).IntPart(), nil
}

func coerceSmallInt(s string) (int, error) {
	n, err := coerceInt(s)
	return int(n), err
}

// coerceDecimal accepts "" (zero) and any numeric text.
func coerceDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
