package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"coach-backend/internal/models"
)

// MinBlockLength is the number of characters a session block needs to become a draft.
const MinBlockLength = 60

// Options tunes ExtractSessions. The zero value is usable.
type Options struct {
	// Suggest returns catalog product ids for a block of text. Nil means no products.
	Suggest func(text string) []string
	// NewID generates draft ids. Defaults to random UUIDs.
	NewID func() string
}

type block struct {
	title string
	lines []string // after the marker line, blank lines kept
	text  string   // trimmed block text
}

// splitBlocks cuts text before every session marker. Text before the first marker
// belongs to no block.
func splitBlocks(text string) (intro []string, blocks []block) {
	lines := splitLines(text)
	start := -1

	emit := func(end int) {
		if start < 0 {
			return
		}
		blocks = append(blocks, block{
			title: SessionTitle(lines[start]),
			lines: lines[start+1 : end],
			text:  strings.TrimSpace(strings.Join(lines[start:end], "\n")),
		})
	}

	for i, l := range lines {
		if l == "" || isBullet(l) || !isMarker(l) {
			if start < 0 && l != "" {
				intro = append(intro, l)
			}
			continue
		}
		emit(i)
		start = i
	}
	emit(len(lines))

	return intro, blocks
}

// ExtractSessions returns one draft per well-formed session block of an assistant
// reply, in document order. Malformed replies yield no drafts; this is not an error.
func ExtractSessions(text string, opts Options) []models.SessionDraft {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	_, blocks := splitBlocks(text)
	drafts := []models.SessionDraft{}
	for _, b := range blocks {
		if IsSectionTitle(b.title) {
			continue
		}
		if utf8.RuneCountInString(b.text) < MinBlockLength {
			continue
		}
		body, _ := splitBody(b.lines)
		sections := foldSections(body)
		if len(sections) == 0 {
			continue
		}

		products := []string{}
		if opts.Suggest != nil {
			if ids := opts.Suggest(b.text); ids != nil {
				products = ids
			}
		}

		drafts = append(drafts, models.SessionDraft{
			ID:       newID(),
			Title:    b.title,
			Content:  b.text,
			Sections: sections,
			Products: products,
		})
	}
	return drafts
}
