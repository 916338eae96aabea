// Package enricher turns raw Shopify products into the documents stored in
// the vector collection.
package enricher

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"product-sync/internal/metadata"
	"product-sync/internal/shopify"
)

// ErrNoVariants is returned for a product without variants. Price and
// variant id come from the first variant, so such a product cannot be enriched.
var ErrNoVariants = errors.New("product has no variants")

// PriceError is returned when the first variant's price is not a valid
// non-negative number.
type PriceError struct {
	Value string
	Err   error
}

func (e *PriceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid price %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid price %q", e.Value)
}

func (e *PriceError) Unwrap() error {
	return e.Err
}

// Document is the enriched product persisted as a point payload.
type Document struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
	Tier        string  `json:"tier"`
	VariantID   int64   `json:"variant_id"`
}

// Payload returns the document as a vector point payload.
func (d Document) Payload() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"description": d.Description,
		"price":       d.Price,
		"image_url":   d.ImageURL,
		"category":    d.Category,
		"tier":        d.Tier,
		"variant_id":  d.VariantID,
	}
}

// EmbeddingText is the text embedded for the document.
func (d Document) EmbeddingText() string {
	return d.Title + ". " + d.Description
}

// MetadataLookup resolves curated metadata for a product title.
type MetadataLookup interface {
	Lookup(title string) metadata.Entry
}

// Enricher converts Shopify products to Documents.
type Enricher struct {
	lookup MetadataLookup
}

// New creates an Enricher backed by the given metadata lookup.
func New(lookup MetadataLookup) *Enricher {
	return &Enricher{lookup: lookup}
}

// Enrich converts one product. It performs no I/O.
func (e *Enricher) Enrich(p shopify.Product) (Document, error) {
	if len(p.Variants) == 0 {
		return Document{}, ErrNoVariants
	}
	variant := p.Variants[0]

	price, err := parsePrice(variant.Price)
	if err != nil {
		return Document{}, err
	}

	imageURL := ""
	if len(p.Images) > 0 {
		imageURL = p.Images[0].Src
	}

	meta := e.lookup.Lookup(strings.TrimSpace(p.Title))

	return Document{
		ID:          Slugify(p.Title),
		Title:       p.Title,
		Description: StripHTML(p.BodyHTML),
		Price:       price,
		ImageURL:    imageURL,
		Category:    meta.Category,
		Tier:        meta.Tier,
		VariantID:   variant.ID,
	}, nil
}

// EnrichAll converts every product, stopping at the first failure.
func (e *Enricher) EnrichAll(products []shopify.Product) ([]Document, error) {
	docs := make([]Document, 0, len(products))
	for i, p := range products {
		doc, err := e.Enrich(p)
		if err != nil {
			return nil, fmt.Errorf("failed to enrich product %d (%q): %w", i, p.Title, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// parsePrice parses a Shopify decimal price. A missing price is 0.
func parsePrice(d *shopify.Decimal) (float64, error) {
	if d == nil {
		return 0, nil
	}
	raw := strings.TrimSpace(string(*d))
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &PriceError{Value: string(*d), Err: err}
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &PriceError{Value: string(*d)}
	}
	return price, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, replaces each run of characters outside [a-z0-9]
// with a single hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
