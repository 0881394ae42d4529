package user

import (
	"strings"

	"github.com/noah-isme/ecom-discount/internal/common"
)

// CustomerTier is the loyalty tier of a customer.
type CustomerTier string

const (
	TierGold   CustomerTier = "gold"
	TierSilver CustomerTier = "silver"
	TierBronze CustomerTier = "bronze"
)

// Tiers returns every known customer tier.
func Tiers() []CustomerTier {
	return []CustomerTier{TierGold, TierSilver, TierBronze}
}

// Valid reports whether the tier is known.
func (t CustomerTier) Valid() bool {
	switch t {
	case TierGold, TierSilver, TierBronze:
		return true
	default:
		return false
	}
}

// CodeInvalidCustomer is the AppError code returned for rejected customer profiles.
const CodeInvalidCustomer = "invalid_customer"

// ProfileParams carries the raw fields of a customer profile.
type ProfileParams struct {
	ID      string       `json:"id" validate:"required"`
	Tier    CustomerTier `json:"tier" validate:"required,oneof=gold silver bronze"`
	Email   string       `json:"email" validate:"required,email"`
	Phone   string       `json:"phone,omitempty" validate:"omitempty,e164"`
	Address string       `json:"address,omitempty"`
}

// CustomerProfile is an immutable view of the shopper being priced.
type CustomerProfile struct {
	id      string
	tier    CustomerTier
	email   string
	phone   string
	address string
}

// NewCustomerProfile validates params and builds a CustomerProfile.
func NewCustomerProfile(p ProfileParams) (CustomerProfile, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Tier = CustomerTier(strings.ToLower(strings.TrimSpace(string(p.Tier))))
	if err := common.ValidateStruct(CodeInvalidCustomer, "invalid customer profile", p); err != nil {
		return CustomerProfile{}, err
	}
	return CustomerProfile{
		id:      p.ID,
		tier:    p.Tier,
		email:   p.Email,
		phone:   p.Phone,
		address: strings.TrimSpace(p.Address),
	}, nil
}

// MustNewCustomerProfile behaves like NewCustomerProfile but panics on error.
func MustNewCustomerProfile(p ProfileParams) CustomerProfile {
	c, err := NewCustomerProfile(p)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CustomerProfile) ID() string         { return c.id }
func (c CustomerProfile) Tier() CustomerTier { return c.tier }
func (c CustomerProfile) Email() string      { return c.email }
func (c CustomerProfile) Phone() string      { return c.phone }
func (c CustomerProfile) Address() string    { return c.address }
