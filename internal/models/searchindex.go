package models

// SearchIndexEntry is one posting of the local inverted index: a normalized
// token mapped to the articles containing it with their accumulated,
// field-weighted relevance scores.
type SearchIndexEntry struct {
	Word string   `gorm:"type:varchar(100);primaryKey" json:"word"`
	Refs ScoreMap `gorm:"type:jsonb;not null" json:"refs"`
}

// TableName specifies the table name
func (SearchIndexEntry) TableName() string {
	return "search_index"
}
