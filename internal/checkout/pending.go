package checkout

import (
	"errors"

	"github.com/docecupcake/cupcake-backend/internal/cart"
	"github.com/docecupcake/cupcake-backend/pkg/util"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrDeliveryMissing = errors.New("delivery data missing")
	ErrPaymentMissing  = errors.New("payment data missing")
)

// StatusPending is set once payment data is attached.
const StatusPending = "pending"

// PendingOrder is the cart snapshot plus the delivery and payment fragments,
// built across the checkout screens and submitted as one unit.
type PendingOrder struct {
	Items    []cart.Item
	Total    decimal.Decimal
	Delivery *DeliveryData
	Payment  *PaymentData
	Status   string
}

// NewPendingOrder snapshots items. The total is computed here, once.
func NewPendingOrder(items []cart.Item) (*PendingOrder, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	snapshot := make([]cart.Item, len(items))
	copy(snapshot, items)
	return &PendingOrder{
		Items: snapshot,
		Total: cart.TotalPrice(snapshot),
	}, nil
}

// Refresh replaces the snapshot after the cart changed, keeping the captured
// delivery and payment data.
func (p *PendingOrder) Refresh(items []cart.Item) {
	p.Items = make([]cart.Item, len(items))
	copy(p.Items, items)
	p.Total = cart.TotalPrice(p.Items)
}

func (p *PendingOrder) ApplyDelivery(d *DeliveryData) error {
	if len(p.Items) == 0 {
		return ErrEmptyOrder
	}
	p.Delivery = d
	return nil
}

func (p *PendingOrder) ApplyPayment(pd *PaymentData) error {
	if len(p.Items) == 0 {
		return ErrEmptyOrder
	}
	p.Payment = pd
	p.Status = StatusPending
	return nil
}

// Ready reports the first missing piece that blocks submission.
func (p *PendingOrder) Ready() error {
	switch {
	case len(p.Items) == 0:
		return ErrEmptyOrder
	case p.Delivery == nil || p.Delivery.DeliveryDate.IsZero():
		return ErrDeliveryMissing
	case p.Payment == nil:
		return ErrPaymentMissing
	}
	return nil
}

// PendingOrderView is what the API shows back; the card is masked.
type PendingOrderView struct {
	Items      []cart.Item   `json:"items"`
	TotalItems int           `json:"total_items"`
	Total      float64       `json:"total"`
	Status     string        `json:"status,omitempty"`
	Delivery   *DeliveryData `json:"delivery,omitempty"`
	Payment    *PaymentView  `json:"payment,omitempty"`
}

type PaymentView struct {
	Method     string `json:"method"`
	CardHolder string `json:"card_holder"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
}

func (p *PendingOrder) View() PendingOrderView {
	v := PendingOrderView{
		Items:      p.Items,
		TotalItems: cart.TotalItems(p.Items),
		Total:      util.ToFloat(p.Total),
		Status:     p.Status,
		Delivery:   p.Delivery,
	}
	if p.Payment != nil {
		v.Payment = &PaymentView{
			Method:     p.Payment.Method,
			CardHolder: p.Payment.CardHolder,
			CardNumber: p.Payment.MaskedCard(),
			CardExpiry: p.Payment.CardExpiry,
		}
	}
	return v
}

func (p *PaymentData) MaskedCard() string {
	return MaskCardNumber(p.CardNumber)
}

// MaskCardNumber keeps the last four digits and formats the rest as '*'.
func MaskCardNumber(digits string) string {
	digits = StripCardNumber(digits)
	if len(digits) <= 4 {
		return digits
	}
	masked := make([]byte, len(digits))
	for i := range digits {
		if i < len(digits)-4 {
			masked[i] = '*'
		} else {
			masked[i] = digits[i]
		}
	}
	return groupFours(string(masked))
}
