package parser

import (
	"strings"

	"coach-backend/internal/models"
)

// Item is one displayed line of a session card.
type Item struct {
	Text   string `json:"text"`
	Header bool   `json:"header,omitempty"`
}

// Card is a session as rendered inside a chat message. After holds the
// paragraphs between this card and the next one.
type Card struct {
	Title    string           `json:"title"`
	Items    []Item           `json:"items"`
	Sections []models.Section `json:"sections"`
	After    []string         `json:"after,omitempty"`
}

// MessageView groups a stored message for display. Outro is the prose after
// the last card.
type MessageView struct {
	Intro []string `json:"intro"`
	Cards []Card   `json:"cards"`
	Outro []string `json:"outro"`
}

// ParseMessage re-derives display groups from a stored message. It is pure and
// applies no length threshold: a session marker without any bullet or header
// below it is shown as a plain paragraph instead of a card.
func ParseMessage(text string) MessageView {
	intro, blocks := splitBlocks(text)
	view := MessageView{
		Intro: paragraphs(intro),
		Cards: []Card{},
		Outro: []string{},
	}

	var prose []string
	for _, b := range blocks {
		body, trailer := splitBody(b.lines)
		items := cardItems(body)

		if len(items) == 0 {
			demoted := paragraphs(append([]string{markerLine(b)}, nonBlank(body)...))
			if len(view.Cards) == 0 {
				view.Intro = append(view.Intro, demoted...)
			} else {
				prose = append(prose, demoted...)
			}
			continue
		}

		if n := len(view.Cards); n > 0 && len(prose) > 0 {
			view.Cards[n-1].After = prose
		}
		prose = paragraphs(trailer)
		view.Cards = append(view.Cards, Card{
			Title:    b.title,
			Items:    items,
			Sections: foldSections(body),
		})
	}
	view.Outro = append(view.Outro, prose...)

	if view.Intro == nil {
		view.Intro = []string{}
	}
	return view
}

// cardItems keeps every body line once a card has structure; a body made only
// of prose has no items.
func cardItems(body []string) []Item {
	structured := false
	for _, l := range body {
		if l != "" && (isBullet(l) || isHeader(l)) {
			structured = true
			break
		}
	}
	if !structured {
		return nil
	}

	var items []Item
	for _, l := range body {
		if l == "" {
			continue
		}
		switch {
		case isBullet(l):
			if text := stripBullet(l); !isEmptyItem(text) {
				items = append(items, Item{Text: text})
			}
		case isHeader(l):
			items = append(items, Item{Text: cleanHeader(l), Header: true})
		default:
			items = append(items, Item{Text: stripMarkdown(l)})
		}
	}
	return items
}

func markerLine(b block) string {
	if i := strings.IndexByte(b.text, '\n'); i >= 0 {
		return b.text[:i]
	}
	return b.text
}

func paragraphs(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if p := stripMarkdown(l); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stripMarkdown(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(s)
}
