package services

import (
	"strings"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/parser"
	"coach-backend/internal/textnorm"
)

const productsHeader = "produits suggeres"

// RenderedCard is a session card with its committable draft, when one is
// pending, and the products to show under it.
type RenderedCard struct {
	parser.Card
	DraftID  string            `json:"draft_id,omitempty"`
	Products []catalog.Product `json:"products"`
}

type RenderedMessage struct {
	Intro []string       `json:"intro"`
	Cards []RenderedCard `json:"cards"`
	Outro []string       `json:"outro"`
}

// RenderMessage parses a stored assistant message for display. A card whose
// normalized title matches a pending draft carries that draft's id and
// products; other cards resolve the message's "Produits suggérés" list or fall
// back to suggestions from the card text.
func RenderMessage(text string, pending []models.SessionDraft, sex catalog.Sex, cat *catalog.Catalog) RenderedMessage {
	view := parser.ParseMessage(text)
	out := RenderedMessage{
		Intro: view.Intro,
		Cards: make([]RenderedCard, 0, len(view.Cards)),
		Outro: view.Outro,
	}

	drafts := make(map[string]models.SessionDraft, len(pending))
	for _, d := range pending {
		key := parser.TitleKey(d.Title)
		if _, dup := drafts[key]; !dup {
			drafts[key] = d
		}
	}

	for _, card := range view.Cards {
		rc := RenderedCard{Card: card, Products: []catalog.Product{}}
		if d, ok := drafts[parser.TitleKey(card.Title)]; ok {
			rc.DraftID = d.ID
			if cat != nil {
				rc.Products = cat.Lookup(d.Products)
			}
			out.Cards = append(out.Cards, rc)
			continue
		}
		if cat != nil {
			if refs := productRefs(card.Items); len(refs) > 0 {
				rc.Products = cat.Resolve(refs)
			}
			if len(rc.Products) == 0 {
				rc.Products = cat.Lookup(cat.Suggest(cardText(card), sex))
			}
		}
		out.Cards = append(out.Cards, rc)
	}
	return out
}

// productRefs collects the items listed under a "Produits suggérés" header.
func productRefs(items []parser.Item) []string {
	var refs []string
	inList := false
	for _, it := range items {
		if it.Header {
			inList = strings.HasPrefix(textnorm.Normalize(strings.TrimSuffix(it.Text, ":")), productsHeader)
			continue
		}
		if inList && strings.TrimSpace(it.Text) != "" {
			refs = append(refs, it.Text)
		}
	}
	return refs
}

func cardText(card parser.Card) string {
	parts := []string{card.Title}
	for _, it := range card.Items {
		parts = append(parts, it.Text)
	}
	return strings.Join(parts, "\n")
}
