package models

// Meaning is a single definition with its usage example and translation
type Meaning struct {
	Definition  string `json:"definition"`
	Example     string `json:"example"`
	Translation string `json:"translation"`
}

// UsageExample is an example sentence that is not tied to one definition
type UsageExample struct {
	Example     string `json:"example"`
	Translation string `json:"translation"`
}

// RelatedForm is a derived or related word (e.g. "runner" for "run")
type RelatedForm struct {
	Word         string `json:"word"`
	PartOfSpeech string `json:"part_of_speech"`
}

// Pronunciation holds phonetic transcriptions per regional variant
type Pronunciation struct {
	UK string `json:"uk"`
	US string `json:"us"`
}

// SenseGroup is the enrichment service's per-part-of-speech bundle for one word
type SenseGroup struct {
	PartOfSpeech    string         `json:"part_of_speech"`
	Meanings        []Meaning      `json:"meanings"`
	GeneralExamples []UsageExample `json:"general_examples"`
	Synonyms        []string       `json:"synonyms"`
	Antonyms        []string       `json:"antonyms"`
	Notes           []string       `json:"notes"`
	Pronunciation   Pronunciation  `json:"pronunciation"`
	RelatedForms    []RelatedForm  `json:"related_forms"`
}
