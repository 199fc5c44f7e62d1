package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// BillItems is a slice of BillItem that implements GORM Scanner/Valuer
// for JSONB storage. Items travel on the bill row so every bill mutation
// is one atomic write.
type BillItems []BillItem

// Value implements driver.Valuer for JSONB storage
func (items BillItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner for JSONB reads
func (items *BillItems) Scan(value interface{}) error {
	return scanJSONB(value, items, func() { *items = BillItems{} })
}

// Payments is a slice of Payment that implements GORM Scanner/Valuer for
// JSONB storage
type Payments []Payment

// Value implements driver.Valuer for JSONB storage
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB reads
func (p *Payments) Scan(value interface{}) error {
	return scanJSONB(value, p, func() { *p = Payments{} })
}

func scanJSONB(value interface{}, dest interface{}, reset func()) error {
	if value == nil {
		reset()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONB column: unsupported type")
	}

	if len(bytes) == 0 {
		reset()
		return nil
	}

	return json.Unmarshal(bytes, dest)
}
