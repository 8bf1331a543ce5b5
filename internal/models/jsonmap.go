package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// mapValue encodes m for a JSON column; a nil map is stored as NULL.
func mapValue(m map[string]any) (driver.Value, error) {
	if m == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL
	}
	return json.Marshal(m)
}

// scanMap decodes a JSON column. Drivers hand back []byte or string
// depending on the dialect.
func scanMap(kind string, value any) (map[string]any, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, fmt.Errorf("cannot scan %T into %s", value, kind)
	}

	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return out, nil
}
