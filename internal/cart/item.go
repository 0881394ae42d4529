package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-discount/internal/catalog"
	"github.com/noah-isme/ecom-discount/internal/common"
	"github.com/noah-isme/ecom-discount/internal/pricing"
)

// CodeInvalidItem is the AppError code returned for rejected cart items.
const CodeInvalidItem = "invalid_cart_item"

// ErrInvalidQuantity is returned when a line quantity is negative.
var ErrInvalidQuantity = errors.New("quantity must not be negative")

// Item is a single cart line: a product, how many of it, and an optional size.
type Item struct {
	product  catalog.Product
	quantity int
	size     string
}

// NewItem builds a cart line. Quantity zero is allowed and contributes nothing to totals.
func NewItem(product catalog.Product, quantity int, size string) (Item, error) {
	if quantity < 0 {
		return Item{}, common.NewAppError(CodeInvalidItem, "invalid cart item", ErrInvalidQuantity)
	}
	return Item{product: product, quantity: quantity, size: size}, nil
}

// MustNewItem behaves like NewItem but panics on error.
func MustNewItem(product catalog.Product, quantity int, size string) Item {
	it, err := NewItem(product, quantity, size)
	if err != nil {
		panic(err)
	}
	return it
}

func (i Item) Product() catalog.Product { return i.product }
func (i Item) Quantity() int            { return i.quantity }
func (i Item) Size() string             { return i.size }

// TotalPrice is the current unit price multiplied by quantity.
func (i Item) TotalPrice() pricing.Money {
	return i.product.CurrentPrice().Mul(decimal.NewFromInt(int64(i.quantity)))
}

// TotalBasePrice is the list unit price multiplied by quantity.
func (i Item) TotalBasePrice() pricing.Money {
	return i.product.BasePrice().Mul(decimal.NewFromInt(int64(i.quantity)))
}
