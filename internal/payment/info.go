package payment

import (
	"strings"

	"github.com/noah-isme/ecom-discount/internal/common"
)

// Method is the channel used to pay for an order.
type Method string

const (
	MethodCard         Method = "card"
	MethodUPI          Method = "upi"
	MethodBankTransfer Method = "bank_transfer"
)

// CardType distinguishes credit from debit cards.
type CardType string

const (
	CardTypeCredit CardType = "credit_card"
	CardTypeDebit  CardType = "debit_card"
)

// CardBrand is the card network.
type CardBrand string

const (
	CardBrandVisa   CardBrand = "visa"
	CardBrandMaster CardBrand = "master"
	CardBrandAmex   CardBrand = "amex"
)

// CodeInvalidPayment is the AppError code returned for rejected payment info.
const CodeInvalidPayment = "invalid_payment_info"

// Params carries the raw fields of a payment.
type Params struct {
	Method    Method    `json:"method" validate:"required,oneof=card upi bank_transfer"`
	BankName  string    `json:"bank_name,omitempty"`
	CardType  CardType  `json:"card_type,omitempty" validate:"omitempty,oneof=credit_card debit_card"`
	CardBrand CardBrand `json:"card_brand,omitempty" validate:"omitempty,oneof=visa master amex"`
}

// Info describes how the shopper intends to pay. Optional fields are empty when unset.
type Info struct {
	method    Method
	bankName  string
	cardType  CardType
	cardBrand CardBrand
}

// NewInfo validates every enum-valued field and builds an Info.
func NewInfo(p Params) (Info, error) {
	p.Method = Method(normalize(string(p.Method)))
	p.BankName = strings.TrimSpace(p.BankName)
	p.CardType = CardType(normalize(string(p.CardType)))
	p.CardBrand = CardBrand(normalize(string(p.CardBrand)))
	if err := common.ValidateStruct(CodeInvalidPayment, "invalid payment info", p); err != nil {
		return Info{}, err
	}
	return Info{
		method:    p.Method,
		bankName:  p.BankName,
		cardType:  p.CardType,
		cardBrand: p.CardBrand,
	}, nil
}

// MustNewInfo behaves like NewInfo but panics on error.
func MustNewInfo(p Params) Info {
	info, err := NewInfo(p)
	if err != nil {
		panic(err)
	}
	return info
}

func (i Info) Method() Method       { return i.method }
func (i Info) BankName() string     { return i.bankName }
func (i Info) CardType() CardType   { return i.cardType }
func (i Info) CardBrand() CardBrand { return i.cardBrand }

// IsMethod reports whether the payment uses the given method.
func (i Info) IsMethod(m Method) bool { return i.method == m }

// IsCardType reports whether the payment card is of the given type. False when no card type is set.
func (i Info) IsCardType(t CardType) bool { return i.cardType != "" && i.cardType == t }

// IsCardBrand reports whether the payment card belongs to the given network.
func (i Info) IsCardBrand(b CardBrand) bool { return i.cardBrand != "" && i.cardBrand == b }

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
