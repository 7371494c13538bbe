package catalog

import (
	"coach-backend/internal/textnorm"
)

// Sex is the user's classification for product filtering.
type Sex string

const (
	SexUnknown Sex = "unknown"
	SexFemale  Sex = "female"
	SexMale    Sex = "male"
)

// Gender is how a product is coded by its wording.
type Gender string

const (
	GenderUnisex Gender = "unisex"
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

var femaleWords = map[string]bool{
	"femme": true, "femmes": true, "women": true, "woman": true, "womens": true,
	"female": true, "girls": true, "fille": true, "filles": true,
}

var maleWords = map[string]bool{
	"homme": true, "hommes": true, "men": true, "man": true, "mens": true,
	"male": true, "boys": true, "garcon": true, "garcons": true,
}

// ProductGender detects gendered vocabulary in the product wording. Words are
// compared whole, so "women" never counts as "men". Mixed or absent wording is unisex.
func ProductGender(p Product) Gender {
	female, male := false, false
	for _, field := range []string{p.Name, p.Description, p.CategoryLabel, p.Badge} {
		for _, w := range textnorm.Words(field) {
			if femaleWords[w] {
				female = true
			}
			if maleWords[w] {
				male = true
			}
		}
	}
	switch {
	case female && !male:
		return GenderFemale
	case male && !female:
		return GenderMale
	default:
		return GenderUnisex
	}
}

// Eligible reports whether p may be suggested to a user of the given sex.
func Eligible(p Product, sex Sex) bool {
	switch sex {
	case SexFemale:
		return ProductGender(p) != GenderMale
	case SexMale:
		return ProductGender(p) != GenderFemale
	default:
		return true
	}
}

// NormalizeSex classifies a free-form profile value such as "Femme", "Homme" or "F".
func NormalizeSex(value string) Sex {
	words := textnorm.Words(value)
	for _, w := range words {
		if femaleWords[w] || w == "f" {
			return SexFemale
		}
	}
	for _, w := range words {
		if maleWords[w] || w == "m" || w == "h" {
			return SexMale
		}
	}
	return SexUnknown
}
