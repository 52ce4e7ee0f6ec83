package store

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// sqliteTimeLayout is fixed width so that TEXT ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteTime stores timestamps as sortable UTC text.
type sqliteTime time.Time

func (t sqliteTime) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(sqliteTimeLayout), nil
}

func (t *sqliteTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = sqliteTime(time.Time{})

		return nil
	case time.Time:
		*t = sqliteTime(v.UTC())

		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan type %T into sqliteTime", value)
	}
}

func (t *sqliteTime) parse(s string) error {
	parsed, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
	}

	*t = sqliteTime(parsed.UTC())

	return nil
}

func (t sqliteTime) Time() time.Time {
	return time.Time(t)
}
