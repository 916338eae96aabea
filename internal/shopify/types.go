package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Product is the subset of the Admin API product resource the sync reads.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Variants []Variant `json:"variants"`
	Images   []Image   `json:"images"`
}

// Variant is a purchasable variant of a product.
type Variant struct {
	ID    int64    `json:"id"`
	Price *Decimal `json:"price"` // nil when absent or null
}

// Image is a product image.
type Image struct {
	Src string `json:"src"`
}

// Decimal holds a price as sent by Shopify. The API encodes prices as
// strings ("9.99") but numeric literals are accepted too. The value is not
// validated here.
type Decimal string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("price must be a string or number: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

type productsResponse struct {
	Products []Product `json:"products"`
}
