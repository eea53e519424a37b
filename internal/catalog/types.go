package catalog

// Product is one candidate item returned by the search provider.
type Product struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Brand      string `json:"brand,omitempty"`
	PriceCents int    `json:"price_cents"`
	ImageURL   string `json:"image_url,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
}

// HasBrand reports whether the product carries brand information.
func (p Product) HasBrand() bool {
	return p.Brand != ""
}
