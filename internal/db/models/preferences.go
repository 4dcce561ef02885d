package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Preferences is an open string-keyed document persisted as JSON.
// No schema is enforced on the values.
type Preferences map[string]any

// GormDBDataType picks the JSON column type of the active dialect.
func (Preferences) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	default:
		return "TEXT"
	}
}

// Get returns the value stored under key.
func (p Preferences) Get(key string) (any, bool) {
	v, ok := p[key]

	return v, ok
}

// Set stores value under key, allocating the map if needed.
func (p *Preferences) Set(key string, value any) {
	if *p == nil {
		*p = Preferences{}
	}

	(*p)[key] = value
}

// Merge copies every entry of other into p.
func (p *Preferences) Merge(other map[string]any) {
	for k, v := range other {
		p.Set(k, v)
	}
}

// Delete removes key.
func (p Preferences) Delete(key string) {
	delete(p, key)
}
