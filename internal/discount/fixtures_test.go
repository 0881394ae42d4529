package discount

import (
	"github.com/noah-isme/ecom-discount/internal/cart"
	"github.com/noah-isme/ecom-discount/internal/catalog"
	"github.com/noah-isme/ecom-discount/internal/payment"
	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
)

func money(v string) pricing.Money { return pricing.MustParse(v) }

func product(id, brand, category, price string) catalog.Product {
	return catalog.MustNewProduct(catalog.ProductParams{
		ID:        id,
		Brand:     brand,
		Tier:      catalog.BrandTierRegular,
		Category:  category,
		BasePrice: money(price),
	})
}

func item(p catalog.Product, qty int) cart.Item {
	return cart.MustNewItem(p, qty, "")
}

var (
	nikeShirt    = product("1", "Nike", "clothing", "99.99")
	pumaShirt    = product("2", "Puma", "clothing", "79.99")
	samsungTV    = product("3", "Samsung", "electronics", "299.99")
	adidasShoes  = product("4", "Adidas", "shoes", "120.00")
	acmeToy      = product("5", "Acme", "toys", "20.00")
	nikeHundred  = product("6", "Nike", "accessories", "100.00")
	genericBook  = product("7", "Penguin", "Books", "15.50")
	unbrandedMug = product("8", "NoName", "home", "12.00")
)

func customer(tier user.CustomerTier) *user.CustomerProfile {
	c := user.MustNewCustomerProfile(user.ProfileParams{
		ID:    "CUST-" + string(tier),
		Tier:  tier,
		Email: string(tier) + "@example.com",
	})
	return &c
}

func bankPayment(bank string) *payment.Info {
	info := payment.MustNewInfo(payment.Params{
		Method:    payment.MethodCard,
		BankName:  bank,
		CardType:  payment.CardTypeCredit,
		CardBrand: payment.CardBrandVisa,
	})
	return &info
}

// fakeStrategy subtracts a fixed amount and records the price it was handed.
type fakeStrategy struct {
	name   string
	key    string
	amount pricing.Money
	err    error
	panics bool
	final  *pricing.Money
	seen   *[]pricing.Money
}

func (f fakeStrategy) Name() string { return f.name }

func (f fakeStrategy) Apply(in Input) (Result, error) {
	if f.seen != nil {
		*f.seen = append(*f.seen, in.CurrentPrice)
	}
	if f.panics {
		panic("table corrupted")
	}
	if f.err != nil {
		return Result{}, f.err
	}
	if f.final != nil {
		return Result{FinalPrice: *f.final}, nil
	}
	return Result{
		FinalPrice: in.CurrentPrice.Sub(f.amount),
		Applied:    []Applied{{Name: f.key, Amount: f.amount}},
	}, nil
}
