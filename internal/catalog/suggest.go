package catalog

import (
	"strings"

	"coach-backend/internal/textnorm"
)

// MaxSuggestions caps every product list attached to a session.
const MaxSuggestions = 4

// perCategory is how many products one category may contribute.
const perCategory = 2

type keywordGroup struct {
	keywords   []string // normalized; a trailing "*" matches any word with that prefix
	categories []string
}

// Checked in order; the category order they produce drives the picks.
var keywordGroups = []keywordGroup{
	{[]string{"course*", "running", "footing", "jogging"}, []string{"Chaussures", "Chaussettes"}},
	{[]string{"fractionne*", "cardio", "interval*"}, []string{"Chaussures"}},
	{[]string{"etirement*", "retour au calme"}, []string{"Récupération"}},
	{[]string{"froid", "hiver", "vent", "pluie*", "pluvieux"}, []string{"Vestes", "Collants", "Gants", "Bandeaux"}},
	{[]string{"chaleur", "chaud", "ete", "soleil"}, []string{"Casquettes"}},
	{[]string{"long", "longue", "hydrat*", "endurance"}, []string{"Hydratation"}},
	{[]string{"nuit", "nocturne", "securite", "visibilite"}, []string{"Sécurité"}},
	{[]string{"musique", "playlist"}, []string{"Audio"}},
	{[]string{"chaussure*", "sneaker*"}, []string{"Chaussures"}},
	{[]string{"chaussette*", "socks"}, []string{"Chaussettes"}},
	{[]string{"tapis", "yoga"}, []string{"Récupération"}},
	{[]string{"elastique*", "elastic*", "bande", "bandes"}, []string{"Récupération"}},
	{[]string{"gourde*", "bouteille*", "eau"}, []string{"Hydratation"}},
	{[]string{"montre*", "watch", "gps", "cardiofrequencemetre"}, []string{"Montres"}},
	{[]string{"gant", "gants", "gloves"}, []string{"Gants"}},
	{[]string{"casquette*", "cap"}, []string{"Casquettes"}},
	{[]string{"bandeau*", "headband"}, []string{"Bandeaux"}},
	{[]string{"brassard*", "armband"}, []string{"Sécurité", "Brassards"}},
}

// SuggestCategories returns the category labels the text calls for, de-duplicated,
// in keyword-group order.
func SuggestCategories(text string) []string {
	words := textnorm.Words(text)
	var out []string
	seen := map[string]bool{}
	for _, g := range keywordGroups {
		if !matchesAny(words, g.keywords) {
			continue
		}
		for _, c := range g.categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Suggest returns up to MaxSuggestions product ids for a session text. Each
// category contributes at most two products in catalog order; picks alternate
// between categories so that every category gets its first product before any
// gets a second one.
func (c *Catalog) Suggest(text string, sex Sex) []string {
	categories := SuggestCategories(text)
	if len(categories) == 0 {
		return []string{}
	}

	candidates := make([][]Product, len(categories))
	for i, label := range categories {
		key := textnorm.Normalize(label)
		for _, p := range c.products {
			if textnorm.Normalize(p.CategoryLabel) != key || !Eligible(p, sex) {
				continue
			}
			candidates[i] = append(candidates[i], p)
			if len(candidates[i]) == perCategory {
				break
			}
		}
	}

	out := []string{}
	seen := map[string]bool{}
	for round := 0; round < perCategory; round++ {
		for _, list := range candidates {
			if round >= len(list) || seen[list[round].ID] {
				continue
			}
			seen[list[round].ID] = true
			out = append(out, list[round].ID)
			if len(out) == MaxSuggestions {
				return out
			}
		}
	}
	return out
}

// Suggester binds a sex filter for use as a draft extraction hook.
func (c *Catalog) Suggester(sex Sex) func(string) []string {
	return func(text string) []string {
		return c.Suggest(text, sex)
	}
}

func matchesAny(words, keywords []string) bool {
	for _, k := range keywords {
		if matchPhrase(words, strings.Fields(k)) {
			return true
		}
	}
	return false
}

func matchPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		ok := true
		for j, p := range phrase {
			if !matchWord(words[i+j], p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func matchWord(word, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(word, prefix)
	}
	return word == pattern
}
