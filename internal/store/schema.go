package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/vocabsheet/pkg/models"
)

// Field names as they appear in the sheet's header row. Column positions are
// configuration discovered from the header, never constants: a reordered
// sheet keeps working as long as every named field is present.
const (
	FieldWord          = "Word"
	FieldPartOfSpeech  = "Part of Speech"
	FieldDefinition    = "Definition"
	FieldTranslation   = "Translation"
	FieldExamples      = "Examples"
	FieldSynonyms      = "Synonyms"
	FieldAntonyms      = "Antonyms"
	FieldRelatedForms  = "Related Forms"
	FieldPronunciation = "Pronunciation"
	FieldCreatedAt     = "Created"
	FieldModifiedAt    = "Modified"
	FieldNextDue       = "Next Due"
	FieldReviewCount   = "Reviews"
	FieldTotalReviews  = "Total Reviews"
	FieldQuizUsage     = "Quiz Uses"
	FieldSpeaking      = "Speaking"
	FieldWriting       = "Writing"
	FieldDifficulty    = "Difficulty"
)

// Cell encodings
const (
	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
	boolYes    = "yes"
)

// requiredFields lists every field a usable sheet must name, in the order
// used when a new sheet is created.
var requiredFields = []string{
	FieldWord, FieldPartOfSpeech, FieldDefinition, FieldTranslation,
	FieldExamples, FieldSynonyms, FieldAntonyms, FieldRelatedForms,
	FieldPronunciation, FieldCreatedAt, FieldModifiedAt, FieldNextDue,
	FieldReviewCount, FieldTotalReviews, FieldQuizUsage,
	FieldSpeaking, FieldWriting, FieldDifficulty,
}

// Schema maps field names to 0-based column indexes
type Schema struct {
	cols  map[string]int
	width int
}

// SchemaFromHeader builds a schema from the sheet's header row
func SchemaFromHeader(header []string) (*Schema, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := cols[name]; dup {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		cols[name] = i
	}
	width := 0
	for _, f := range requiredFields {
		idx, ok := cols[f]
		if !ok {
			return nil, fmt.Errorf("header is missing required column %q", f)
		}
		if idx+1 > width {
			width = idx + 1
		}
	}
	return &Schema{cols: cols, width: width}, nil
}

// DefaultSchema returns the schema of a freshly created sheet
func DefaultSchema() *Schema {
	s, err := SchemaFromHeader(requiredFields)
	if err != nil {
		panic(err) // requiredFields is always a valid header
	}
	return s
}

// Header returns the header row for a new sheet
func (s *Schema) Header() []string {
	header := make([]string, s.width)
	for name, idx := range s.cols {
		header[idx] = name
	}
	return header
}

// Col returns the 0-based column index of a field, or -1 if unknown
func (s *Schema) Col(field string) int {
	idx, ok := s.cols[field]
	if !ok {
		return -1
	}
	return idx
}

// Width returns the number of columns a full row occupies
func (s *Schema) Width() int {
	return s.width
}

// Decode converts a raw sheet row into a record
func (s *Schema) Decode(row []string, rowIndex int) models.WordRecord {
	get := func(field string) string {
		idx := s.cols[field]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	rec := models.WordRecord{
		Row:           rowIndex,
		Word:          get(FieldWord),
		PartOfSpeech:  get(FieldPartOfSpeech),
		Definition:    get(FieldDefinition),
		Translation:   get(FieldTranslation),
		Examples:      get(FieldExamples),
		Synonyms:      get(FieldSynonyms),
		Antonyms:      get(FieldAntonyms),
		RelatedForms:  get(FieldRelatedForms),
		Pronunciation: get(FieldPronunciation),
	}
	rec.CreatedAt = parseTime(get(FieldCreatedAt))
	rec.ModifiedAt = parseTime(get(FieldModifiedAt))
	rec.Review.NextDue = parseDate(get(FieldNextDue))
	rec.Review.ReviewCount = parseInt(get(FieldReviewCount))
	rec.Review.TotalReviews = parseInt(get(FieldTotalReviews))
	rec.QuizUsage = parseInt(get(FieldQuizUsage))
	rec.Meta.Speaking = get(FieldSpeaking) == boolYes
	rec.Meta.Writing = get(FieldWriting) == boolYes
	rec.Meta.Difficulty = parseInt(get(FieldDifficulty))
	return rec
}

// Encode converts a record into a raw sheet row
func (s *Schema) Encode(rec models.WordRecord) []string {
	row := make([]string, s.width)
	set := func(field, value string) {
		if idx, ok := s.cols[field]; ok && idx < len(row) {
			row[idx] = value
		}
	}
	set(FieldWord, rec.Word)
	set(FieldPartOfSpeech, rec.PartOfSpeech)
	set(FieldDefinition, rec.Definition)
	set(FieldTranslation, rec.Translation)
	set(FieldExamples, rec.Examples)
	set(FieldSynonyms, rec.Synonyms)
	set(FieldAntonyms, rec.Antonyms)
	set(FieldRelatedForms, rec.RelatedForms)
	set(FieldPronunciation, rec.Pronunciation)
	set(FieldCreatedAt, formatTime(rec.CreatedAt))
	set(FieldModifiedAt, formatTime(rec.ModifiedAt))
	set(FieldNextDue, formatDate(rec.Review.NextDue))
	set(FieldReviewCount, strconv.Itoa(rec.Review.ReviewCount))
	set(FieldTotalReviews, strconv.Itoa(rec.Review.TotalReviews))
	set(FieldQuizUsage, strconv.Itoa(rec.QuizUsage))
	set(FieldSpeaking, formatBool(rec.Meta.Speaking))
	set(FieldWriting, formatBool(rec.Meta.Writing))
	set(FieldDifficulty, strconv.Itoa(rec.Meta.Difficulty))
	return row
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatBool(b bool) string {
	if b {
		return boolYes
	}
	return ""
}
