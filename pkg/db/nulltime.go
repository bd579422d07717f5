package db

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timeLayouts covers the text forms the supported drivers hand back for
// aggregate timestamp expressions (MAX over a datetime column loses the
// declared column type on sqlite, so the value arrives as TEXT).
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// NullTime decodes timestamp values from raw aggregate scans across
// dialects: postgres and mysql (parseTime) deliver time.Time, sqlite
// delivers a string or []byte literal.
type NullTime struct {
	Time  time.Time
	Valid bool
}

func (t *NullTime) Scan(value any) error {
	t.Time, t.Valid = time.Time{}, false
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("db: cannot scan %T into NullTime", value)
	}
}

func (t *NullTime) parse(s string) error {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("db: cannot parse %q as time", s)
}

// Value satisfies driver.Valuer so GORM's schema parser assigns the
// field a data type instead of treating it as a relation.
func (t NullTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}

// Ptr returns the value as *time.Time, nil when unset.
func (t NullTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
