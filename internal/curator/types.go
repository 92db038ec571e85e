// Package curator defines core types shared across subsystems.
package curator

// Status represents the review state of a product record.
type Status string

// Status values persisted for each product record.
const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusDisapproved Status = "disapproved"

	// StatusRejected is a legacy alias still present in older rows; filters
	// treat it as disapproved but new writes never produce it.
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a status the workflow accepts on writes.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisapproved:
		return true
	}
	return false
}

// Currency is an ISO-4217-like currency code inferred from the source URL.
type Currency string

// Supported currency codes.
const (
	CurrencySAR Currency = "SAR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyAED Currency = "AED"
	CurrencyKWD Currency = "KWD"
	CurrencyQAR Currency = "QAR"
	CurrencyBHD Currency = "BHD"
	CurrencyOMR Currency = "OMR"
	CurrencyJOD Currency = "JOD"
	CurrencyEGP Currency = "EGP"
)

// DefaultCurrency is applied when no inference rule matches.
const DefaultCurrency = CurrencySAR

// Marketplace identifies the e-commerce platform a URL belongs to.
type Marketplace string

// Known marketplaces with dedicated extraction heuristics.
const (
	MarketplaceEtsy       Marketplace = "etsy"
	MarketplaceEbay       Marketplace = "ebay"
	MarketplaceAmazon     Marketplace = "amazon"
	MarketplaceSalla      Marketplace = "salla"
	MarketplaceZid        Marketplace = "zid"
	MarketplaceNoon       Marketplace = "noon"
	MarketplaceShopify    Marketplace = "shopify"
	MarketplaceAliExpress Marketplace = "aliexpress"
	MarketplaceGeneric    Marketplace = "generic"
)

// MaxImages caps the image set carried by any record; extractors truncate,
// never error, on overflow.
const MaxImages = 5

// Draft is a normalized product record before persistence. It carries no ID;
// the persistence layer assigns one on create.
type Draft struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Price       float64  `json:"price"`
	Currency    Currency `json:"currency"`
	URL         string   `json:"url"`
}

// ProductRecord is the canonical persisted product shape.
type ProductRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Price       float64  `json:"price"`
	Currency    Currency `json:"currency"`
	URL         string   `json:"url"`
	Status      Status   `json:"status"`
	Season      string   `json:"season,omitempty"`
}

// Clone returns a deep copy of the record. Season member lists hold these
// snapshots, not live references.
func (r ProductRecord) Clone() ProductRecord {
	cp := r
	if r.Images != nil {
		cp.Images = make([]string, len(r.Images))
		copy(cp.Images, r.Images)
	}
	return cp
}

// ProductPatch is a partial update applied to a persisted record. Nil fields
// are left untouched.
type ProductPatch struct {
	Status *Status `json:"status,omitempty"`
	Season *string `json:"season,omitempty"`
}

// Season groups product snapshots under an operator-chosen name.
type Season struct {
	Name    string          `json:"name"`
	Members []ProductRecord `json:"members"`
}

// User identifies the authenticated operator; nil means guest mode.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
