package models

import "time"

// ReviewState tracks spaced-repetition scheduling for a single record
type ReviewState struct {
	NextDue      time.Time `json:"next_due"`
	ReviewCount  int       `json:"review_count"`  // successful repetition streak, reset by "again"
	TotalReviews int       `json:"total_reviews"` // how many times the word was shown
}

// UserMetadata holds the user-managed flags that enrichment must never touch
type UserMetadata struct {
	Speaking   bool `json:"speaking"`
	Writing    bool `json:"writing"`
	Difficulty int  `json:"difficulty"` // 1-5 scale of difficulty
}

// WordRecord represents one vocabulary entry in the sheet
type WordRecord struct {
	Row           int    `json:"row"` // 1-based data row, stable only while no rows are inserted above
	Word          string `json:"word"`
	PartOfSpeech  string `json:"part_of_speech"`
	Definition    string `json:"definition"`
	Translation   string `json:"translation"`
	Examples      string `json:"examples"`
	Synonyms      string `json:"synonyms"`
	Antonyms      string `json:"antonyms"`
	RelatedForms  string `json:"related_forms"`
	Pronunciation string `json:"pronunciation"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	Review    ReviewState  `json:"review"`
	QuizUsage int          `json:"quiz_usage"`
	Meta      UserMetadata `json:"meta"`
}

// HasWord reports whether the record holds a non-blank word
func (r *WordRecord) HasWord() bool {
	return r.Word != ""
}
