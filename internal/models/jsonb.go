package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB type for PostgreSQL JSONB fields
type JSONB map[string]interface{}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(JSONB)
	err := json.Unmarshal(bytes, &result)
	*j = result
	return err
}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(j)
}

// ScoreMap maps an article remote id to an accumulated relevance score
type ScoreMap map[string]float64

// Scan implements sql.Scanner interface
func (m *ScoreMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(ScoreMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal ScoreMap value: %v", value)
	}

	result := make(ScoreMap)
	err := json.Unmarshal(bytes, &result)
	*m = result
	return err
}

// Value implements driver.Valuer interface
func (m ScoreMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return json.Marshal(map[string]float64{})
	}
	return json.Marshal(map[string]float64(m))
}
