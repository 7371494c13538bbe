package catalog

import (
	"reflect"
	"testing"
)

func categoryOf(t *testing.T, c *Catalog, id string) string {
	t.Helper()
	p, ok := c.Get(id)
	if !ok {
		t.Fatalf("suggested unknown product %q", id)
	}
	return p.CategoryLabel
}

func TestSuggestCategories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"running adds shoes and socks once", "Footing puis cardio et running", []string{"Chaussures", "Chaussettes"}},
		{"cool-down phrase", "## Retour au calme", []string{"Récupération"}},
		{"cold weather", "Il fait froid et il y a du vent", []string{"Vestes", "Collants", "Gants", "Bandeaux"}},
		{"accented summer", "Séance d'été sous le soleil", []string{"Casquettes"}},
		{"night and music", "Sortie de nuit avec ta musique", []string{"Sécurité", "Audio"}},
		{"armband", "Prends ton brassard", []string{"Sécurité", "Brassards"}},
		{"no substring hits", "Travaille ta capacité, séance complète", nil},
		{"nothing", "Bravo pour ta régularité", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SuggestCategories(tc.text); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SuggestCategories(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestSuggest_RainAndRunning(t *testing.T) {
	c := mustLoad(t)
	texts := []string{
		"Séance : Course sous la pluie (40 min)\n## Échauffement\n- 10 min footing\n## Conseils\n- couvre-toi",
		"Séance : Sortie pluvieuse\nIl annonce de la pluie, garde ta course courte.\n## Retour au calme\n- étirements doux",
	}

	for _, text := range texts {
		ids := c.Suggest(text, SexUnknown)
		cats := map[string]bool{}
		for _, id := range ids {
			cats[categoryOf(t, c, id)] = true
		}
		if !cats["Vestes"] || !cats["Chaussures"] {
			t.Errorf("expected jackets and shoes for %q, got %v", text, ids)
		}
	}
}

func TestSuggest_BoundedAndUnique(t *testing.T) {
	c := mustLoad(t)
	texts := []string{
		"",
		"course running footing fractionné cardio étirements froid hiver chaleur longue hydratation nuit musique gourde montre gants casquette bandeau brassard",
		"Chaussures, chaussettes et tapis de yoga",
		"Séance : Footing léger (30 min)\n## Échauffement\n- 5 min marche\n## Conseils\n- bois de l'eau",
	}

	for _, text := range texts {
		for _, sex := range []Sex{SexUnknown, SexFemale, SexMale} {
			ids := c.Suggest(text, sex)
			if len(ids) > MaxSuggestions {
				t.Errorf("Suggest returned %d ids for %q", len(ids), text)
			}
			seen := map[string]bool{}
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate id %q for %q", id, text)
				}
				seen[id] = true
			}
		}
	}
}

func TestSuggest_CategoryOrderAndLimit(t *testing.T) {
	c := mustLoad(t)
	got := c.Suggest("Footing tranquille", SexUnknown)
	want := []string{"8956115", "8296178", "8873070", "8810971"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest = %v, want %v", got, want)
	}
}

func TestSuggest_NoKeywords(t *testing.T) {
	c := mustLoad(t)
	got := c.Suggest("Bravo, continue comme ça !", SexUnknown)
	if got == nil || len(got) != 0 {
		t.Errorf("expected an empty, non-nil list, got %#v", got)
	}
}

func TestSuggest_AppliesSexFilter(t *testing.T) {
	c, err := New([]Product{
		{ID: "tight-men", Name: "Run Tights Men", CategoryLabel: "Collants"},
		{ID: "tight-women", Name: "Run Tights Women", CategoryLabel: "Collants"},
		{ID: "tight-unisex", Name: "Run Tights", CategoryLabel: "Collants"},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		sex  Sex
		want []string
	}{
		{SexFemale, []string{"tight-women", "tight-unisex"}},
		{SexMale, []string{"tight-men", "tight-unisex"}},
		{SexUnknown, []string{"tight-men", "tight-women"}},
	}
	for _, tc := range tests {
		if got := c.Suggest("froid", tc.sex); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Suggest(froid, %s) = %v, want %v", tc.sex, got, tc.want)
		}
	}
}

func TestSuggester(t *testing.T) {
	c := mustLoad(t)
	fn := c.Suggester(SexFemale)
	if !reflect.DeepEqual(fn("footing"), c.Suggest("footing", SexFemale)) {
		t.Error("Suggester should delegate to Suggest")
	}
}
