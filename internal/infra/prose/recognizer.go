package prose

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

var _ application.EntityRecognizer = (*Recognizer)(nil)

// patterns are tried before the NER model and win when both find the same
// span. group selects the submatch that forms the entity, 0 for the whole
// match.
var patterns = []struct {
	label domain.EntityLabel
	re    *regexp.Regexp
	group int
}{
	{domain.EntityDate, regexp.MustCompile(`\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`), 0},
	{domain.EntityDate, regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`), 0},
	{domain.EntityDate, regexp.MustCompile(`(?i)\b(?:today|tomorrow|yesterday|(?:next|last|this)\s+(?:week|month|year|monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`), 0},
	{domain.EntityMoney, regexp.MustCompile(`\$\s*\d+(?:,\d{3})*(?:\.\d{2})?|\b\d+(?:,\d{3})*(?:\.\d{2})?\s*dollars\b`), 0},
	{domain.EntityOrganization, regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]*\s+)+(?:Company|Corp(?:oration)?|Inc|LLC|Ltd|Group|Bank|University|Agency|Associates)\b`), 0},
	{domain.EntityPerson, regexp.MustCompile(`\b(?:[Tt]his is|[Mm]y name is|I'm|I am)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`), 1},
}

// single words the model tends to tag at the start of a dictation
var fillerWords = map[string]bool{
	"hello": true, "hi": true, "hey": true, "good": true, "dear": true,
	"greetings": true, "morning": true, "afternoon": true, "evening": true,
	"thanks": true, "thank": true, "please": true, "yes": true, "no": true,
	"okay": true, "ok": true, "well": true, "so": true,
}

type Recognizer struct{}

func NewRecognizer() *Recognizer {
	return &Recognizer{}
}

func (r *Recognizer) Recognize(ctx context.Context, text string) ([]domain.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("tagging document: %w", err)
	}

	var tagged []domain.Entity
	cursor := 0
	for _, ent := range doc.Entities() {
		label := domain.EntityLabel(ent.Label)
		if _, ok := label.FieldFor(); !ok {
			continue
		}
		if fillerWords[strings.ToLower(strings.TrimSpace(ent.Text))] {
			continue
		}
		start := -1
		if i := strings.Index(text[cursor:], ent.Text); i >= 0 {
			start = cursor + i
			cursor = start + len(ent.Text)
		}
		tagged = append(tagged, domain.Entity{Text: ent.Text, Label: label, Start: start})
	}

	return merge(patternEntities(text), tagged), nil
}

func patternEntities(text string) []domain.Entity {
	var out []domain.Entity
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[2*p.group], loc[2*p.group+1]
			if start < 0 {
				continue
			}
			out = append(out, domain.Entity{
				Text:  text[start:end],
				Label: p.label,
				Start: start,
			})
		}
	}
	return out
}

type rankedEntity struct {
	domain.Entity
	rank int
}

// merge orders entities by offset and drops any entity overlapping one kept
// before it. At the same offset an entity from an earlier group wins, then
// the longer span. Unlocated entities are dropped.
func merge(groups ...[]domain.Entity) []domain.Entity {
	var all []rankedEntity
	for rank, g := range groups {
		for _, e := range g {
			all = append(all, rankedEntity{Entity: e, rank: rank})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return len(a.Text) > len(b.Text)
	})

	out := make([]domain.Entity, 0, len(all))
	end := 0
	for _, e := range all {
		if e.Start < 0 || e.Start < end {
			continue
		}
		out = append(out, e.Entity)
		end = e.Start + len(e.Text)
	}
	return out
}
