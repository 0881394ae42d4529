package cart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-discount/internal/catalog"
	"github.com/noah-isme/ecom-discount/internal/pricing"
)

func testProduct(base, current string) catalog.Product {
	cur := pricing.MustParse(current)
	return catalog.MustNewProduct(catalog.ProductParams{
		ID:           "SKU-1",
		Brand:        "Puma",
		Tier:         catalog.BrandTierRegular,
		Category:     "shoes",
		BasePrice:    pricing.MustParse(base),
		CurrentPrice: &cur,
	})
}

func TestItemTotals(t *testing.T) {
	it, err := NewItem(testProduct("100.00", "79.99"), 3, "42")
	require.NoError(t, err)
	require.Equal(t, "42", it.Size())
	require.Equal(t, 3, it.Quantity())
	require.Equal(t, "239.97", pricing.Format(it.TotalPrice()))
	require.Equal(t, "300.00", pricing.Format(it.TotalBasePrice()))
}

func TestZeroQuantityContributesNothing(t *testing.T) {
	it := MustNewItem(testProduct("100.00", "79.99"), 0, "")
	require.True(t, it.TotalPrice().IsZero())
	require.True(t, it.TotalBasePrice().IsZero())
}

func TestNegativeQuantityRejected(t *testing.T) {
	_, err := NewItem(testProduct("10", "10"), -1, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestItemsFeedSubtotal(t *testing.T) {
	items := []Item{
		MustNewItem(testProduct("10", "10"), 2, ""),
		MustNewItem(testProduct("5.55", "5.55"), 1, ""),
	}
	require.Equal(t, "25.55", pricing.Format(pricing.Subtotal(items)))
}
