package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"coach-backend/internal/catalog"
	"coach-backend/internal/models"
	"coach-backend/internal/parser"
	"coach-backend/internal/storage"
)

// ProductHandler exposes the catalog and the text tools built on it.
type ProductHandler struct {
	catalog *catalog.Catalog
	images  storage.ImageURLs
}

func NewProductHandler(cat *catalog.Catalog, images storage.ImageURLs) *ProductHandler {
	if images == nil {
		images = storage.StaticURLs{}
	}
	return &ProductHandler{catalog: cat, images: images}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products := h.withImages(r, h.catalog.List(r.URL.Query().Get("category")))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products":   products,
		"categories": h.catalog.Categories(),
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Product not found", r))
		return
	}
	writeJSON(w, http.StatusOK, h.withImages(r, []catalog.Product{p})[0])
}

func (h *ProductHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req models.ParseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{"text": "required"}, r))
		return
	}

	ids := h.catalog.Suggest(req.Text, catalog.NormalizeSex(req.Sex))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": catalog.SuggestCategories(req.Text),
		"products":   h.withImages(r, h.catalog.Lookup(ids)),
	})
}

// ParseSessions runs draft extraction on arbitrary text.
func (h *ProductHandler) ParseSessions(w http.ResponseWriter, r *http.Request) {
	var req models.ParseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	drafts := parser.ExtractSessions(req.Text, parser.Options{
		Suggest: h.catalog.Suggester(catalog.NormalizeSex(req.Sex)),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": drafts,
	})
}

func (h *ProductHandler) ParseMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ParseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	writeJSON(w, http.StatusOK, parser.ParseMessage(req.Text))
}

// withImages swaps catalog image paths for URLs a browser can load. A product
// whose URL cannot be built is returned without an image.
func (h *ProductHandler) withImages(r *http.Request, products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(products))
	for i, p := range products {
		if p.Image != "" {
			url, err := h.images.ImageURL(r.Context(), p.Image)
			if err != nil {
				log.Printf("failed to build image url for product %s: %v", p.ID, err)
				url = ""
			}
			p.Image = url
		}
		out[i] = p
	}
	return out
}
