package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// GrammarIssue describes one problem found by the grammar check
type GrammarIssue struct {
	Message     string   `json:"message"`
	Snippet     string   `json:"snippet"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// GrammarIssueList is a JSON column of grammar issues
type GrammarIssueList []GrammarIssue

// Value implements driver.Valuer for GrammarIssueList
func (l GrammarIssueList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]GrammarIssue{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for GrammarIssueList
func (l *GrammarIssueList) Scan(value interface{}) error {
	if value == nil {
		*l = GrammarIssueList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, l)
}

// StringList is a JSON column of strings (filler words, improvement tips)
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, l)
}

// AnalysisResult holds the combined output of the analysis pipeline for one
// video. Created once after both grammar and speech analyses succeed; never
// mutated afterwards except for deletion.
type AnalysisResult struct {
	gorm.Model
	VideoID uint   `json:"video_id" gorm:"not null;uniqueIndex"`
	OwnerID string `json:"owner_id" gorm:"not null;index"`

	Transcript string `json:"transcript" gorm:"type:text"`

	// Scores bounded to [0,100]
	OverallScore int `json:"overall_score"`
	GrammarScore int `json:"grammar_score"`

	GrammarIssues   GrammarIssueList `json:"grammar_issues" gorm:"type:json"`
	FillerWords     StringList       `json:"filler_words" gorm:"type:json"`
	SpeakingRate    float64          `json:"speaking_rate"` // words per minute
	Sentiment       string           `json:"sentiment"`
	FluencyFeedback string           `json:"fluency_feedback" gorm:"type:text"`
	Improvements    StringList       `json:"improvements" gorm:"type:json"`
}

// TableName returns the table name for the AnalysisResult model
func (AnalysisResult) TableName() string {
	return "analysis_results"
}
