package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/cart"
	"github.com/docecupcake/cupcake-backend/internal/checkout"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderCreator struct {
	mu      sync.Mutex
	calls   []CreateOrderInput
	err     error
	release chan struct{}
}

func (f *fakeOrderCreator) CreateOrder(input CreateOrderInput) (*model.Order, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: uint(len(f.calls)), UserID: input.UserID, Status: model.OrderStatusPending}, nil
}

func (f *fakeOrderCreator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var checkoutNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func setupCheckoutServiceTest(t *testing.T, orders *fakeOrderCreator) (CheckoutService, *session.Session) {
	svc := NewCheckoutService(orders).(*checkoutService)
	svc.now = func() time.Time { return checkoutNow }
	sess := session.NewRegistry(time.Hour).Create()
	require.NoError(t, sess.Do(func(st *session.State) error {
		st.Cart.AddItem(cart.Product{ID: 1, Name: "Chocolate Delight", Price: 12.90}, 2)
		st.Cart.AddItem(cart.Product{ID: 2, Name: "Morango Fresco", Price: 13.90}, 1)
		return nil
	}))
	return svc, sess
}

func deliveryForm() checkout.DeliveryForm {
	return checkout.DeliveryForm{
		Name:         "Ana Souza",
		Email:        "ana@example.com",
		Address:      "Rua das Flores, 10",
		DeliveryDate: "12/03/2026",
	}
}

func paymentForm() checkout.PaymentForm {
	return checkout.PaymentForm{
		CardNumber: "4111 1111 1111 1111",
		CardHolder: "ANA SOUZA",
		CardExpiry: "1228",
		CardCVV:    "123",
	}
}

func readyCheckout(t *testing.T, svc CheckoutService, sess *session.Session) {
	_, err := svc.Start(sess)
	require.NoError(t, err)
	_, err = svc.SetDelivery(sess, deliveryForm())
	require.NoError(t, err)
	_, err = svc.SetPayment(sess, paymentForm())
	require.NoError(t, err)
}

func TestCheckoutService_Flow(t *testing.T) {
	orders := &fakeOrderCreator{}
	svc, sess := setupCheckoutServiceTest(t, orders)

	view, err := svc.Start(sess)
	require.NoError(t, err)
	assert.Equal(t, 39.70, view.Total)
	assert.Equal(t, 3, view.TotalItems)

	view, err = svc.SetDelivery(sess, deliveryForm())
	require.NoError(t, err)
	require.NotNil(t, view.Delivery)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), view.Delivery.DeliveryDate)

	view, err = svc.SetPayment(sess, paymentForm())
	require.NoError(t, err)
	assert.Equal(t, checkout.StatusPending, view.Status)
	require.NotNil(t, view.Payment)
	assert.Equal(t, "**** **** **** 1111", view.Payment.CardNumber)
	assert.Equal(t, "credit", view.Payment.Method)

	order, err := svc.Submit(sess, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), order.UserID)

	require.Equal(t, 1, orders.count())
	input := orders.calls[0]
	assert.Equal(t, uint(42), input.UserID)
	assert.Equal(t, 39.70, input.Total)
	assert.Equal(t, "credit", input.PaymentMethod)
	require.Len(t, input.Items, 2)
	assert.Equal(t, OrderItemInput{CupcakeID: 1, Quantity: 2, Price: 12.90}, input.Items[0])

	_, err = svc.View(sess)
	assert.ErrorIs(t, err, ErrCheckoutNotStarted)
	require.NoError(t, sess.Do(func(st *session.State) error {
		assert.Zero(t, st.Cart.Len())
		return nil
	}))
}

func TestCheckoutService_StartEmptyCart(t *testing.T) {
	svc := NewCheckoutService(&fakeOrderCreator{})
	sess := session.NewRegistry(time.Hour).Create()

	_, err := svc.Start(sess)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutService_FragmentsNeedStart(t *testing.T) {
	svc, sess := setupCheckoutServiceTest(t, &fakeOrderCreator{})

	_, err := svc.SetDelivery(sess, deliveryForm())
	assert.ErrorIs(t, err, ErrCheckoutNotStarted)
	_, err = svc.SetPayment(sess, paymentForm())
	assert.ErrorIs(t, err, ErrCheckoutNotStarted)
}

func TestCheckoutService_SetDeliveryFieldErrors(t *testing.T) {
	svc, sess := setupCheckoutServiceTest(t, &fakeOrderCreator{})
	_, err := svc.Start(sess)
	require.NoError(t, err)

	form := deliveryForm()
	form.Email = "not-an-email"
	form.DeliveryDate = "09/03/2026"
	_, err = svc.SetDelivery(sess, form)

	var fields checkout.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "email")
	assert.Equal(t, "must be today or later", fields["delivery_date"])

	view, err := svc.View(sess)
	require.NoError(t, err)
	assert.Nil(t, view.Delivery)
}

func TestCheckoutService_SubmitRejects(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, svc CheckoutService, sess *session.Session)
		userID  uint
		wantErr error
	}{
		{
			name:    "Anonymous",
			prepare: readyCheckout,
			userID:  0,
			wantErr: ErrNotAuthenticated,
		},
		{
			name:    "Not started",
			prepare: func(*testing.T, CheckoutService, *session.Session) {},
			userID:  7,
			wantErr: ErrDeliveryMissing,
		},
		{
			name: "No payment",
			prepare: func(t *testing.T, svc CheckoutService, sess *session.Session) {
				_, err := svc.Start(sess)
				require.NoError(t, err)
				_, err = svc.SetDelivery(sess, deliveryForm())
				require.NoError(t, err)
			},
			userID:  7,
			wantErr: ErrPaymentMissing,
		},
		{
			name: "Cart emptied",
			prepare: func(t *testing.T, svc CheckoutService, sess *session.Session) {
				readyCheckout(t, svc, sess)
				require.NoError(t, sess.Do(func(st *session.State) error {
					st.Cart.Clear()
					return nil
				}))
			},
			userID:  7,
			wantErr: ErrEmptyCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &fakeOrderCreator{}
			svc, sess := setupCheckoutServiceTest(t, orders)
			tt.prepare(t, svc, sess)

			order, err := svc.Submit(sess, tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
			assert.Zero(t, orders.count())
		})
	}
}

func TestCheckoutService_SubmitFailureKeepsState(t *testing.T) {
	orders := &fakeOrderCreator{err: errors.New("database is down")}
	svc, sess := setupCheckoutServiceTest(t, orders)
	readyCheckout(t, svc, sess)

	_, err := svc.Submit(sess, 7)
	assert.ErrorIs(t, err, ErrSubmitFailed)

	view, err := svc.View(sess)
	require.NoError(t, err)
	assert.NotNil(t, view.Payment)
	assert.Equal(t, 3, view.TotalItems)

	orders.err = nil
	_, err = svc.Submit(sess, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, orders.count())
}

func TestCheckoutService_SubmitOnlyOnceInFlight(t *testing.T) {
	orders := &fakeOrderCreator{release: make(chan struct{})}
	svc, sess := setupCheckoutServiceTest(t, orders)
	readyCheckout(t, svc, sess)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(sess, 7)
		done <- err
	}()

	require.Eventually(t, sess.Submitting, time.Second, time.Millisecond)
	_, err := svc.Submit(sess, 7)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(orders.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, orders.count())
}

func TestCheckoutService_EditsWaitForSubmission(t *testing.T) {
	orders := &fakeOrderCreator{release: make(chan struct{})}
	svc, sess := setupCheckoutServiceTest(t, orders)
	readyCheckout(t, svc, sess)
	cartService := NewCartService(nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(sess, 7)
		done <- err
	}()
	require.Eventually(t, sess.Submitting, time.Second, time.Millisecond)

	_, err := cartService.UpdateQuantity(sess, 1, 5)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	_, err = svc.SetDelivery(sess, deliveryForm())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	_, err = svc.Start(sess)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(orders.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, orders.count())
	assert.Equal(t, 2, orders.calls[0].Items[0].Quantity)
	assert.Empty(t, cartService.View(sess).Items)
}
