// Package catalog holds the read-only product list and the rules that match
// products to coaching text.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"coach-backend/internal/textnorm"
)

//go:embed products.yaml
var embeddedProducts []byte

type Product struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Price         string `yaml:"price" json:"price"`
	Image         string `yaml:"image,omitempty" json:"image,omitempty"`
	CategoryKey   string `yaml:"category_key" json:"category_key"`
	CategoryLabel string `yaml:"category_label" json:"category_label"`
	Badge         string `yaml:"badge" json:"badge"`
	Description   string `yaml:"description" json:"description"`
}

type Catalog struct {
	products []Product
	byID     map[string]int
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Load parses the catalog shipped with the binary.
func Load() (*Catalog, error) {
	return Parse(embeddedProducts)
}

// Parse reads a catalog document: a top-level "products" list.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Products)
}

// New builds a catalog, keeping the given order.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("product %d has no id", i)
		}
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.CategoryLabel) == "" {
			return nil, fmt.Errorf("product %s needs a name and a category label", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// List returns the products of a category, matched on label or key, or every
// product when category is empty.
func (c *Catalog) List(category string) []Product {
	key := textnorm.Normalize(category)
	out := []Product{}
	for _, p := range c.products {
		if key == "" || textnorm.Normalize(p.CategoryLabel) == key || textnorm.Normalize(p.CategoryKey) == key {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct category labels in catalog order.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range c.products {
		if !seen[p.CategoryLabel] {
			seen[p.CategoryLabel] = true
			out = append(out, p.CategoryLabel)
		}
	}
	return out
}

// Lookup returns the products for ids, skipping unknown ones.
func (c *Catalog) Lookup(ids []string) []Product {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Resolve maps free references, as a coach writes them under "Produits suggérés",
// to products: exact id, exact name, category label, then a name or category
// containing the reference.
func (c *Catalog) Resolve(refs []string) []Product {
	var out []Product
	seen := map[string]bool{}

	for _, ref := range refs {
		key := textnorm.Normalize(ref)
		if key == "" {
			continue
		}
		p, ok := c.resolveOne(key)
		if !ok || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func (c *Catalog) resolveOne(key string) (Product, bool) {
	for _, p := range c.products {
		if textnorm.Normalize(p.ID) == key {
			return p, true
		}
	}
	for _, p := range c.products {
		if textnorm.Normalize(p.Name) == key {
			return p, true
		}
	}
	for _, p := range c.products {
		if textnorm.Normalize(p.CategoryLabel) == key {
			return p, true
		}
	}
	for _, p := range c.products {
		if strings.Contains(textnorm.Normalize(p.Name), key) || strings.Contains(textnorm.Normalize(p.CategoryLabel), key) {
			return p, true
		}
	}
	return Product{}, false
}
