/*
store.go - Persistence contracts consumed by the engine

PURPOSE:
  Defines the interfaces between the pay engine and durable storage.
  Implementations: pay/store (in-memory, tests and dev) and store/sqlite
  (production).

CONTRACT NOTES:
  - ReadAll must tolerate an empty or uninitialized backing table by
    returning an empty list, never an error for "nothing there yet".
  - Append assigns the next unused integer id: max existing id + 1, or 1
    when the table is empty. Records are validated before Append is ever
    called; the store persists what it is given.
  - DeleteByID removes exactly one record and is a no-op when the id is
    absent.
  - The store is single-writer by assumption; last write wins.
    Implementations guard their own process with a mutex, nothing more;
    callers needing multi-writer correctness must serialize externally.

SETTINGS:
  Settings are stored as independent string key/value pairs per owner.
  Each key falls back to its documented default when unset or
  unparseable; a half-configured owner still computes.
*/
package pay

import (
	"context"
	"errors"
	"strconv"
)

// =============================================================================
// RECORD STORE
// =============================================================================

// RecordStore is durable storage for activity records.
// ReadAll returns loose rows; callers coerce them via DecodeRecords.
type RecordStore interface {
	// ReadAll returns every row for an owner. Empty owner means all rows
	// (single-user variants). An uninitialized table yields an empty list.
	ReadAll(ctx context.Context, owner string) ([]RawRecord, error)

	// Append persists a validated record and returns the assigned id
	// (max existing id + 1, or 1 when empty).
	Append(ctx context.Context, rec ActivityRecord) (int64, error)

	// DeleteByID removes exactly one record; no-op if absent.
	DeleteByID(ctx context.Context, id int64) error
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// Settings keys. Each is independently defaulted.
const (
	SettingBaseWage   = "base_hourly_wage"
	SettingDriveWage  = "drive_hourly_wage"
	SettingClosingDay = "closing_day"
)

// SettingsStore is per-owner key/value storage for settings.
type SettingsStore interface {
	// Get returns the stored value, or ErrSettingNotFound when unset.
	Get(ctx context.Context, owner, key string) (string, error)

	// Set stores or overwrites a value in place.
	Set(ctx context.Context, owner, key, value string) error
}

// =============================================================================
// SETTINGS LOAD / SAVE
// =============================================================================

// LoadSettings reads an owner's settings, substituting the documented
// default for any key that is unset or unparseable. A storage failure on
// one key degrades that key, not the whole load.
func LoadSettings(ctx context.Context, store SettingsStore, owner string) Settings {
	s := DefaultSettings()
	if v, ok := loadIntSetting(ctx, store, owner, SettingBaseWage); ok {
		s.BaseHourlyWage = v
	}
	if v, ok := loadIntSetting(ctx, store, owner, SettingDriveWage); ok {
		s.DriveHourlyWage = v
	}
	if v, ok := loadIntSetting(ctx, store, owner, SettingClosingDay); ok && v >= 1 && v <= 31 {
		s.ClosingDay = int(v)
	}
	return s
}

func loadIntSetting(ctx context.Context, store SettingsStore, owner, key string) (int64, bool) {
	raw, err := store.Get(ctx, owner, key)
	if err != nil {
		return 0, false
	}
	// Stored values inherit the same tolerance as record fields: "1190.0"
	// from a sheet-backed store is still 1190.
	n, err := coerceInt(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SaveSettings writes all three keys for an owner.
func SaveSettings(ctx context.Context, store SettingsStore, owner string, s Settings) error {
	pairs := map[string]int64{
		SettingBaseWage:   s.BaseHourlyWage,
		SettingDriveWage:  s.DriveHourlyWage,
		SettingClosingDay: int64(s.ClosingDay),
	}
	var errs []error
	for key, v := range pairs {
		if err := store.Set(ctx, owner, key, strconv.FormatInt(v, 10)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
