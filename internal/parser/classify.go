// Package parser turns free-form coach replies into structured sessions.
//
// The pipeline is tokenize lines, classify each line, fold into sections.
// ExtractSessions is the strict entry point producing committable drafts;
// ParseMessage is the lenient one used to redisplay a stored message.
// Both share the marker, title, bullet and classification rules below.
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"coach-backend/internal/models"
	"coach-backend/internal/textnorm"
)

var (
	// A session starts on a line such as "Séance : Footing (30 min)", "**Seance 2**" or "### Séance".
	sessionMarker = regexp.MustCompile(`(?i)^(?:#+\s*)?(?:\*\*)?\s*s(?:é|e)ance\b`)
	titlePrefix   = regexp.MustCompile(`(?i)^s(?:é|e)ance\s*:\s*`)
	bulletMarker  = regexp.MustCompile(`^(?:[-•–]|\*(?:\s|$))\s*`)
)

type stem struct {
	prefix string
	label  models.SectionLabel
}

// Matched on whole words, in order.
var sectionStems = []stem{
	{"echauffement", models.SectionWarmUp},
	{"echauffements", models.SectionWarmUp},
	{"warm-up", models.SectionWarmUp},
	{"warm up", models.SectionWarmUp},
	{"exercices", models.SectionExercises},
	{"exercice", models.SectionExercises},
	{"exercises", models.SectionExercises},
	{"course a pied", models.SectionRunning},
	{"course", models.SectionRunning},
	{"running", models.SectionRunning},
	{"retour au calme", models.SectionCoolDown},
	{"cool-down", models.SectionCoolDown},
	{"cool down", models.SectionCoolDown},
	{"etirements", models.SectionStretching},
	{"etirement", models.SectionStretching},
	{"stretching", models.SectionStretching},
	{"conseils", models.SectionTips},
	{"conseil", models.SectionTips},
	{"tips", models.SectionTips},
}

// Classify maps a header line to its section label. Bullet lines are body
// content and never classify, so "- étirements" inside a cool-down stays an item.
func Classify(line string) (models.SectionLabel, bool) {
	if isBullet(line) {
		return "", false
	}
	n := textnorm.Normalize(cleanHeader(line))
	if n == "" {
		return "", false
	}
	for _, s := range sectionStems {
		if hasWordPrefix(n, s.prefix) {
			return s.label, true
		}
	}
	return "", false
}

// IsSectionTitle reports whether s is exactly a section name, such as "Conseils".
func IsSectionTitle(s string) bool {
	n := textnorm.Normalize(cleanHeader(s))
	for _, st := range sectionStems {
		if n == st.prefix {
			return true
		}
	}
	return false
}

// SessionTitle derives a session title from its marker line:
// "**Séance : Footing léger (30 min)**" becomes "Footing léger (30 min)".
// The word is kept when no colon follows it ("Séance de fractionné").
func SessionTitle(line string) string {
	t := strings.TrimSpace(line)
	t = strings.TrimLeft(t, "#")
	t = strings.ReplaceAll(t, "**", "")
	t = strings.TrimSpace(t)
	stripped := strings.TrimSpace(titlePrefix.ReplaceAllString(t, ""))
	if stripped == "" {
		return t
	}
	return stripped
}

// TitleKey is the comparison key binding a stored draft to a rendered card.
func TitleKey(title string) string {
	return textnorm.Normalize(SessionTitle(title))
}

func isMarker(line string) bool {
	return sessionMarker.MatchString(strings.TrimSpace(line))
}

func isBullet(line string) bool {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "**") {
		return false
	}
	return bulletMarker.MatchString(t)
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletMarker.ReplaceAllString(strings.TrimSpace(line), ""))
}

func cleanHeader(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(s)
}

func isHeader(line string) bool {
	if isBullet(line) {
		return false
	}
	if _, ok := Classify(line); ok {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(strings.ReplaceAll(line, "**", "")), ":")
}

func isEmptyItem(s string) bool {
	return s == "" || s == "-" || s == "--"
}

func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	if len(s) == len(prefix) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[len(prefix):])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// splitLines trims every line and normalizes line endings. Blank lines are kept
// because they delimit trailing paragraphs.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// splitBody separates the structured body of a block from a trailing paragraph:
// prose that follows a blank line after the last bullet or header.
func splitBody(lines []string) (body, trailer []string) {
	last := -1
	for i, l := range lines {
		if l != "" && (isBullet(l) || isHeader(l)) {
			last = i
		}
	}
	if last < 0 {
		return lines, nil
	}
	for i := last + 1; i < len(lines); i++ {
		if lines[i] == "" {
			return lines[:i], nonBlank(lines[i:])
		}
	}
	return lines, nil
}

// foldSections groups body lines under the most recent header. Lines before the
// first header are dropped and only sections with items are kept.
func foldSections(lines []string) []models.Section {
	var sections []models.Section
	var current *models.Section

	flush := func() {
		if current != nil && len(current.Items) > 0 && current.Label.Valid() {
			sections = append(sections, *current)
		}
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if label, ok := Classify(line); ok {
			flush()
			current = &models.Section{Label: label}
			continue
		}
		if current == nil {
			continue
		}
		item := stripBullet(line)
		if isEmptyItem(item) {
			continue
		}
		current.Items = append(current.Items, item)
	}
	flush()

	return sections
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
