package processor

import (
	"fmt"
	"strings"

	"github.com/example/vocabsheet/pkg/models"
)

// Sentinel marks content cells of a row whose enrichment visibly failed
const Sentinel = "—"

// Content holds the flattened display fields produced from sense groups.
// Scheduling and user-metadata fields are deliberately absent: applying
// content to a record can never touch them.
type Content struct {
	PartOfSpeech  string
	Definition    string
	Translation   string
	Examples      string
	Synonyms      string
	Antonyms      string
	RelatedForms  string
	Pronunciation string
}

// ApplyTo overwrites the record's content fields, leaving everything else
// (timestamps, scheduling, user metadata) untouched
func (c Content) ApplyTo(rec *models.WordRecord) {
	rec.PartOfSpeech = c.PartOfSpeech
	rec.Definition = c.Definition
	rec.Translation = c.Translation
	rec.Examples = c.Examples
	rec.Synonyms = c.Synonyms
	rec.Antonyms = c.Antonyms
	rec.RelatedForms = c.RelatedForms
	rec.Pronunciation = c.Pronunciation
}

// FailureContent returns the sentinel content written when single-word
// enrichment fails: every content cell reads "—" and the part-of-speech cell
// carries the error, so the failure is visible in the sheet instead of silent
func FailureContent(reason string) Content {
	return Content{
		PartOfSpeech:  reason,
		Definition:    Sentinel,
		Translation:   Sentinel,
		Examples:      Sentinel,
		Synonyms:      Sentinel,
		Antonyms:      Sentinel,
		RelatedForms:  Sentinel,
		Pronunciation: Sentinel,
	}
}

// Flatten turns the service's sense groups into display fields. Each field is
// built of per-part-of-speech blocks in the order the groups were returned,
// each block prefixed with a part-of-speech header and blocks separated by a
// blank line.
func Flatten(groups []models.SenseGroup) Content {
	var c Content

	var posList []string
	var defBlocks, trBlocks, exBlocks, synBlocks, antBlocks, relBlocks []string

	for _, g := range groups {
		pos := strings.TrimSpace(g.PartOfSpeech)
		if pos == "" {
			pos = "unknown"
		}
		posList = append(posList, pos)

		if b := definitionBlock(g); b != "" {
			defBlocks = append(defBlocks, block(pos, b))
		}
		if b := translationBlock(g); b != "" {
			trBlocks = append(trBlocks, block(pos, b))
		}
		if b := exampleBlock(g); b != "" {
			exBlocks = append(exBlocks, block(pos, b))
		}
		if b := bullets(g.Synonyms); b != "" {
			synBlocks = append(synBlocks, block(pos, b))
		}
		if b := bullets(g.Antonyms); b != "" {
			antBlocks = append(antBlocks, block(pos, b))
		}
		if b := relatedBlock(g.RelatedForms); b != "" {
			relBlocks = append(relBlocks, block(pos, b))
		}
		if c.Pronunciation == "" {
			c.Pronunciation = pronunciationLine(g.Pronunciation)
		}
	}

	c.PartOfSpeech = strings.Join(posList, ", ")
	c.Definition = strings.Join(defBlocks, "\n\n")
	c.Translation = strings.Join(trBlocks, "\n\n")
	c.Examples = strings.Join(exBlocks, "\n\n")
	c.Synonyms = strings.Join(synBlocks, "\n\n")
	c.Antonyms = strings.Join(antBlocks, "\n\n")
	c.RelatedForms = strings.Join(relBlocks, "\n\n")
	return c
}

func block(pos, body string) string {
	return "[" + pos + "]\n" + body
}

func definitionBlock(g models.SenseGroup) string {
	var lines []string
	for i, m := range g.Meanings {
		if strings.TrimSpace(m.Definition) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(m.Definition)))
	}
	if b := bullets(g.Notes); b != "" {
		lines = append(lines, b)
	}
	return strings.Join(lines, "\n")
}

func translationBlock(g models.SenseGroup) string {
	var items []string
	for _, m := range g.Meanings {
		if t := strings.TrimSpace(m.Translation); t != "" {
			items = append(items, t)
		}
	}
	return bullets(items)
}

func exampleBlock(g models.SenseGroup) string {
	var lines []string
	for _, m := range g.Meanings {
		if line := exampleLine(m.Example, m.Translation); line != "" {
			lines = append(lines, line)
		}
	}
	for _, e := range g.GeneralExamples {
		if line := exampleLine(e.Example, e.Translation); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func exampleLine(example, translation string) string {
	example = strings.TrimSpace(example)
	if example == "" {
		return ""
	}
	if t := strings.TrimSpace(translation); t != "" {
		return "• " + example + " (" + t + ")"
	}
	return "• " + example
}

func relatedBlock(forms []models.RelatedForm) string {
	var items []string
	for _, f := range forms {
		w := strings.TrimSpace(f.Word)
		if w == "" {
			continue
		}
		if pos := strings.TrimSpace(f.PartOfSpeech); pos != "" {
			w += " (" + pos + ")"
		}
		items = append(items, w)
	}
	return bullets(items)
}

func pronunciationLine(p models.Pronunciation) string {
	var parts []string
	if uk := strings.TrimSpace(p.UK); uk != "" {
		parts = append(parts, "UK "+uk)
	}
	if us := strings.TrimSpace(p.US); us != "" {
		parts = append(parts, "US "+us)
	}
	return strings.Join(parts, ", ")
}

// bullets joins items on one line: "• fast • quick"
func bullets(items []string) string {
	var kept []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, "• "+it)
		}
	}
	return strings.Join(kept, " ")
}
