// Package scenario loads cart pricing scenarios from YAML or JSON files and runs them
// through the discount pipeline.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ecom-discount/internal/cart"
	"github.com/noah-isme/ecom-discount/internal/catalog"
	"github.com/noah-isme/ecom-discount/internal/discount"
	"github.com/noah-isme/ecom-discount/internal/payment"
	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
)

// Scenario is a cart to price plus optional expectations about the outcome.
type Scenario struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Customer    Customer `yaml:"customer" json:"customer"`
	Payment     *Payment `yaml:"payment" json:"payment,omitempty"`
	Coupon      string   `yaml:"coupon" json:"coupon,omitempty"`
	Items       []Item   `yaml:"items" json:"items"`
	Expect      *Expect  `yaml:"expect" json:"expect,omitempty"`
}

// Customer mirrors user.ProfileParams in file form.
type Customer struct {
	ID      string `yaml:"id" json:"id"`
	Tier    string `yaml:"tier" json:"tier"`
	Email   string `yaml:"email" json:"email"`
	Phone   string `yaml:"phone" json:"phone,omitempty"`
	Address string `yaml:"address" json:"address,omitempty"`
}

// Payment mirrors payment.Params in file form.
type Payment struct {
	Method    string `yaml:"method" json:"method"`
	BankName  string `yaml:"bank_name" json:"bank_name,omitempty"`
	CardType  string `yaml:"card_type" json:"card_type,omitempty"`
	CardBrand string `yaml:"card_brand" json:"card_brand,omitempty"`
}

// Item is one cart line. Prices are decimal strings.
type Item struct {
	ID           string `yaml:"id" json:"id"`
	Brand        string `yaml:"brand" json:"brand"`
	BrandTier    string `yaml:"brand_tier" json:"brand_tier"`
	Category     string `yaml:"category" json:"category"`
	BasePrice    string `yaml:"base_price" json:"base_price"`
	CurrentPrice string `yaml:"current_price" json:"current_price,omitempty"`
	Quantity     int    `yaml:"quantity" json:"quantity"`
	Size         string `yaml:"size" json:"size,omitempty"`
}

// Expect lists assertions checked after pricing. Empty fields are not checked.
type Expect struct {
	OriginalPrice string            `yaml:"original_price" json:"original_price,omitempty"`
	FinalPrice    string            `yaml:"final_price" json:"final_price,omitempty"`
	Discounts     map[string]string `yaml:"discounts" json:"discounts,omitempty"`
	Absent        []string          `yaml:"absent" json:"absent,omitempty"`
	Keys          []string          `yaml:"keys" json:"keys,omitempty"`
}

// LoadScenario parses a single YAML or JSON scenario file. The format is detected by file extension.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var s Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("scenario %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &s, nil
}

// LoadScenarios loads a file, or every scenario file in a directory sorted by name.
func LoadScenarios(path string) ([]*Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		return []*Scenario{s}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)

	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Request converts the scenario into a pipeline request, validating every value object.
func (s *Scenario) Request() (discount.Request, error) {
	customer, err := user.NewCustomerProfile(user.ProfileParams{
		ID:      s.Customer.ID,
		Tier:    user.CustomerTier(s.Customer.Tier),
		Email:   s.Customer.Email,
		Phone:   s.Customer.Phone,
		Address: s.Customer.Address,
	})
	if err != nil {
		return discount.Request{}, fmt.Errorf("customer: %w", err)
	}
	req := discount.Request{Customer: &customer, CouponCode: s.Coupon}

	if s.Payment != nil {
		info, err := payment.NewInfo(payment.Params{
			Method:    payment.Method(s.Payment.Method),
			BankName:  s.Payment.BankName,
			CardType:  payment.CardType(s.Payment.CardType),
			CardBrand: payment.CardBrand(s.Payment.CardBrand),
		})
		if err != nil {
			return discount.Request{}, fmt.Errorf("payment: %w", err)
		}
		req.Payment = &info
	}

	for i, it := range s.Items {
		line, err := it.build()
		if err != nil {
			return discount.Request{}, fmt.Errorf("item %d: %w", i, err)
		}
		req.Items = append(req.Items, line)
	}
	return req, nil
}

func (it Item) build() (cart.Item, error) {
	base, err := pricing.Parse(it.BasePrice)
	if err != nil {
		return cart.Item{}, err
	}
	params := catalog.ProductParams{
		ID:        it.ID,
		Brand:     it.Brand,
		Tier:      catalog.BrandTier(strings.ToLower(strings.TrimSpace(it.BrandTier))),
		Category:  it.Category,
		BasePrice: base,
	}
	if strings.TrimSpace(it.CurrentPrice) != "" {
		current, err := pricing.Parse(it.CurrentPrice)
		if err != nil {
			return cart.Item{}, err
		}
		params.CurrentPrice = &current
	}
	product, err := catalog.NewProduct(params)
	if err != nil {
		return cart.Item{}, err
	}
	return cart.NewItem(product, it.Quantity, it.Size)
}
