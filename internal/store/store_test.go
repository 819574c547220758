package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabsheet/pkg/models"
)

var testNow = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

func sampleRecord(word string) models.WordRecord {
	return models.WordRecord{
		Word:          word,
		PartOfSpeech:  "verb",
		Definition:    "[verb]\n1. definition of " + word,
		Translation:   "[verb]\n• перевод",
		Examples:      "[verb]\n• example sentence",
		Synonyms:      "[verb]\n• fast",
		Antonyms:      "[verb]\n• slow",
		RelatedForms:  "[verb]\n• runner (noun)",
		Pronunciation: "UK /rʌn/, US /rʌn/",
		CreatedAt:     testNow,
		ModifiedAt:    testNow,
		Review: models.ReviewState{
			NextDue:      time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
			ReviewCount:  2,
			TotalReviews: 5,
		},
		QuizUsage: 3,
		Meta:      models.UserMetadata{Speaking: true, Difficulty: 4},
	}
}

func openTempExcel(t *testing.T) *ExcelStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocabulary.xlsx")
	st, err := OpenExcel(path, "Vocabulary")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestExcelRoundTrip(t *testing.T) {
	st := openTempExcel(t)

	want := sampleRecord("run")
	require.NoError(t, st.WriteRows(1, []models.WordRecord{want}))

	count, err := st.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	recs, err := st.ReadRows(1, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	want.Row = 1
	// RFC3339 drops sub-second precision; the sample has none
	assert.Equal(t, want.Word, got.Word)
	assert.Equal(t, want.Definition, got.Definition)
	assert.Equal(t, want.Pronunciation, got.Pronunciation)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.Review.NextDue.Equal(got.Review.NextDue))
	assert.Equal(t, want.Review.ReviewCount, got.Review.ReviewCount)
	assert.Equal(t, want.Review.TotalReviews, got.Review.TotalReviews)
	assert.Equal(t, want.QuizUsage, got.QuizUsage)
	assert.Equal(t, want.Meta, got.Meta)
}

func TestExcelSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.xlsx")

	st, err := OpenExcel(path, "Vocabulary")
	require.NoError(t, err)
	require.NoError(t, st.WriteRows(1, []models.WordRecord{sampleRecord("run"), sampleRecord("walk")}))
	require.NoError(t, st.Close())

	reopened, err := OpenExcel(path, "Vocabulary")
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	recs, err := reopened.ReadRows(2, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "walk", recs[0].Word)
	assert.Equal(t, 2, recs[0].Row)
}

func TestExcelDeleteRowShiftsRows(t *testing.T) {
	st := openTempExcel(t)
	require.NoError(t, st.WriteRows(1, []models.WordRecord{
		sampleRecord("one"), sampleRecord("two"), sampleRecord("three"),
	}))

	require.NoError(t, st.DeleteRow(2))

	recs, err := st.ReadRows(1, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "one", recs[0].Word)
	assert.Equal(t, "three", recs[1].Word)
}

func TestExcelSortByDueDate(t *testing.T) {
	st := openTempExcel(t)

	early := sampleRecord("early")
	early.Review.NextDue = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	late := sampleRecord("late")
	late.Review.NextDue = time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC)
	mid := sampleRecord("mid")
	mid.Review.NextDue = time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.WriteRows(1, []models.WordRecord{late, early, mid}))
	require.NoError(t, st.Sort([]SortKey{{Field: FieldNextDue, Ascending: true}}))

	recs, err := st.ReadRows(1, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "early", recs[0].Word)
	assert.Equal(t, "mid", recs[1].Word)
	assert.Equal(t, "late", recs[2].Word)
}

func TestSchemaFromHeaderReordered(t *testing.T) {
	// a sheet whose columns were rearranged by hand still decodes correctly
	header := []string{FieldTranslation, FieldWord, FieldDefinition, FieldPartOfSpeech}
	header = append(header, requiredFields[4:]...)

	schema, err := SchemaFromHeader(header)
	require.NoError(t, err)

	rec := sampleRecord("run")
	decoded := schema.Decode(schema.Encode(rec), 7)
	assert.Equal(t, "run", decoded.Word)
	assert.Equal(t, rec.Translation, decoded.Translation)
	assert.Equal(t, rec.Examples, decoded.Examples)
	assert.Equal(t, 7, decoded.Row)
}

func TestSchemaFromHeaderMissingColumn(t *testing.T) {
	_, err := SchemaFromHeader([]string{FieldWord, FieldDefinition})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestMemoryStoreWriteBeyondEndExtends(t *testing.T) {
	st := NewMemory()
	require.NoError(t, st.WriteRows(3, []models.WordRecord{sampleRecord("gap")}))

	count, err := st.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	recs, err := st.ReadRows(3, 1)
	require.NoError(t, err)
	assert.Equal(t, "gap", recs[0].Word)
}
