package catalog

import (
	"errors"
	"strings"

	"github.com/noah-isme/ecom-discount/internal/common"
	"github.com/noah-isme/ecom-discount/internal/pricing"
)

// BrandTier classifies a brand's market positioning.
type BrandTier string

const (
	BrandTierPremium BrandTier = "premium"
	BrandTierRegular BrandTier = "regular"
	BrandTierBudget  BrandTier = "budget"
)

// BrandTiers returns every known brand tier.
func BrandTiers() []BrandTier {
	return []BrandTier{BrandTierPremium, BrandTierRegular, BrandTierBudget}
}

// Valid reports whether the tier is one of the known brand tiers.
func (t BrandTier) Valid() bool {
	switch t {
	case BrandTierPremium, BrandTierRegular, BrandTierBudget:
		return true
	default:
		return false
	}
}

// CodeInvalidProduct is the AppError code returned for rejected products.
const CodeInvalidProduct = "invalid_product"

var (
	// ErrNegativePrice is returned when a product price is below zero.
	ErrNegativePrice = errors.New("product price must not be negative")
)

// ProductParams carries the raw fields used to build a Product.
type ProductParams struct {
	ID           string         `json:"id" validate:"required"`
	Brand        string         `json:"brand" validate:"required"`
	Tier         BrandTier      `json:"brand_tier" validate:"required,oneof=premium regular budget"`
	Category     string         `json:"category" validate:"required"`
	BasePrice    pricing.Money  `json:"base_price"`
	CurrentPrice *pricing.Money `json:"current_price,omitempty"`
}

// Product is an immutable catalog entry.
type Product struct {
	id           string
	brand        string
	tier         BrandTier
	category     string
	basePrice    pricing.Money
	currentPrice pricing.Money
}

// NewProduct validates params and builds a Product. CurrentPrice defaults to BasePrice.
func NewProduct(p ProductParams) (Product, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Category = strings.TrimSpace(p.Category)
	if err := common.ValidateStruct(CodeInvalidProduct, "invalid product", p); err != nil {
		return Product{}, err
	}
	current := p.BasePrice
	if p.CurrentPrice != nil {
		current = *p.CurrentPrice
	}
	if p.BasePrice.IsNegative() || current.IsNegative() {
		return Product{}, common.NewAppError(CodeInvalidProduct, "invalid product", ErrNegativePrice)
	}
	return Product{
		id:           p.ID,
		brand:        p.Brand,
		tier:         p.Tier,
		category:     p.Category,
		basePrice:    p.BasePrice,
		currentPrice: current,
	}, nil
}

// MustNewProduct behaves like NewProduct but panics on error. Useful for fixtures.
func MustNewProduct(p ProductParams) Product {
	product, err := NewProduct(p)
	if err != nil {
		panic(err)
	}
	return product
}

func (p Product) ID() string                  { return p.id }
func (p Product) Brand() string               { return p.brand }
func (p Product) Tier() BrandTier             { return p.tier }
func (p Product) Category() string            { return p.category }
func (p Product) BasePrice() pricing.Money    { return p.basePrice }
func (p Product) CurrentPrice() pricing.Money { return p.currentPrice }

func (p Product) IsPremium() bool { return p.tier == BrandTierPremium }
func (p Product) IsRegular() bool { return p.tier == BrandTierRegular }
func (p Product) IsBudget() bool  { return p.tier == BrandTierBudget }
