package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/checkout"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/docecupcake/cupcake-backend/pkg/util"
)

var (
	ErrNotAuthenticated     = errors.New("sign in required to place an order")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCheckoutNotStarted   = errors.New("checkout not started")
	ErrDeliveryMissing      = errors.New("delivery data missing")
	ErrPaymentMissing       = errors.New("payment data missing")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrSubmitFailed         = errors.New("order could not be placed")
)

// OrderCreator persists a submitted order.
type OrderCreator interface {
	CreateOrder(input CreateOrderInput) (*model.Order, error)
}

type CheckoutService interface {
	Start(sess *session.Session) (checkout.PendingOrderView, error)
	SetDelivery(sess *session.Session, form checkout.DeliveryForm) (checkout.PendingOrderView, error)
	SetPayment(sess *session.Session, form checkout.PaymentForm) (checkout.PendingOrderView, error)
	View(sess *session.Session) (checkout.PendingOrderView, error)
	Submit(sess *session.Session, userID uint) (*model.Order, error)
}

type checkoutService struct {
	orders OrderCreator
	now    func() time.Time
}

func NewCheckoutService(orders OrderCreator) CheckoutService {
	return &checkoutService{orders: orders, now: time.Now}
}

// Start snapshots the cart into a pending order, replacing any earlier one.
func (s *checkoutService) Start(sess *session.Session) (checkout.PendingOrderView, error) {
	var view checkout.PendingOrderView
	err := sess.Edit(func(st *session.State) error {
		pending, err := checkout.NewPendingOrder(st.Cart.Items())
		if err != nil {
			return ErrEmptyCart
		}
		st.Pending = pending
		view = pending.View()
		return nil
	})
	return view, busy(err)
}

func busy(err error) error {
	if errors.Is(err, session.ErrSessionBusy) {
		return ErrSubmissionInProgress
	}
	return err
}

// withPending runs fn on the pending order. Read-only callers pass sess.Do,
// editing ones sess.Edit.
func withPending(
	access func(func(*session.State) error) error,
	fn func(p *checkout.PendingOrder) error,
) (checkout.PendingOrderView, error) {
	var view checkout.PendingOrderView
	err := access(func(st *session.State) error {
		if st.Pending == nil {
			return ErrCheckoutNotStarted
		}
		if err := fn(st.Pending); err != nil {
			if errors.Is(err, checkout.ErrEmptyOrder) {
				return ErrEmptyCart
			}
			return err
		}
		view = st.Pending.View()
		return nil
	})
	return view, busy(err)
}

// SetDelivery validates the form first; field errors leave the pending order unchanged.
func (s *checkoutService) SetDelivery(sess *session.Session, form checkout.DeliveryForm) (checkout.PendingOrderView, error) {
	delivery, err := checkout.ValidateDelivery(form, s.now())
	if err != nil {
		return checkout.PendingOrderView{}, err
	}
	return withPending(sess.Edit, func(p *checkout.PendingOrder) error {
		return p.ApplyDelivery(delivery)
	})
}

func (s *checkoutService) SetPayment(sess *session.Session, form checkout.PaymentForm) (checkout.PendingOrderView, error) {
	payment, err := checkout.ValidatePayment(form)
	if err != nil {
		return checkout.PendingOrderView{}, err
	}
	return withPending(sess.Edit, func(p *checkout.PendingOrder) error {
		return p.ApplyPayment(payment)
	})
}

func (s *checkoutService) View(sess *session.Session) (checkout.PendingOrderView, error) {
	return withPending(sess.Do, func(*checkout.PendingOrder) error { return nil })
}

// Submit turns the pending order into a persisted one. Nothing is sent to the
// store unless the caller is signed in and every fragment is present. On
// failure the cart and pending order are kept for a retry; on success both
// are cleared.
func (s *checkoutService) Submit(sess *session.Session, userID uint) (*model.Order, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	if !sess.Begin() {
		return nil, ErrSubmissionInProgress
	}
	defer sess.End()

	var input CreateOrderInput
	err := sess.Do(func(st *session.State) error {
		if st.Cart.Len() == 0 {
			return ErrEmptyCart
		}
		if st.Pending == nil {
			return ErrDeliveryMissing
		}
		switch err := st.Pending.Ready(); {
		case errors.Is(err, checkout.ErrEmptyOrder):
			return ErrEmptyCart
		case errors.Is(err, checkout.ErrDeliveryMissing):
			return ErrDeliveryMissing
		case errors.Is(err, checkout.ErrPaymentMissing):
			return ErrPaymentMissing
		case err != nil:
			return err
		}
		input = orderInput(userID, st.Pending)
		return nil
	})
	if err != nil {
		logger.Warn("Order submission rejected", map[string]interface{}{
			"session_id": sess.ID,
			"user_id":    userID,
			"reason":     err.Error(),
		})
		return nil, err
	}

	order, err := s.orders.CreateOrder(input)
	if err != nil {
		logger.Error("Order submission failed", err, map[string]interface{}{
			"session_id": sess.ID,
			"user_id":    userID,
		})
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	sess.Reset()
	logger.Info("Order submitted", map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    userID,
		"order_id":   order.ID,
	})
	return order, nil
}

// orderInput keeps only the payment method label; card data never leaves the session.
func orderInput(userID uint, p *checkout.PendingOrder) CreateOrderInput {
	items := make([]OrderItemInput, len(p.Items))
	for i, it := range p.Items {
		items[i] = OrderItemInput{
			CupcakeID: it.ID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			Notes:     it.Notes,
		}
	}
	return CreateOrderInput{
		UserID:        userID,
		Items:         items,
		Total:         util.ToFloat(p.Total),
		DeliveryDate:  p.Delivery.DeliveryDate,
		PaymentMethod: p.Payment.Method,
	}
}
