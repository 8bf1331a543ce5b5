package models

import "database/sql/driver"

// Document is a rich-text document produced by the editor and stored as JSON.
type Document map[string]any

func (d Document) Value() (driver.Value, error) {
	return mapValue(d)
}

func (d *Document) Scan(value any) error {
	m, err := scanMap("Document", value)
	if err != nil {
		return err
	}
	*d = m
	return nil
}
