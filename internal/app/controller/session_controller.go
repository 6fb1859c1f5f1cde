package controller

import (
	"errors"
	"net/http"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/service"
	"github.com/docecupcake/cupcake-backend/internal/checkout"
	apperrors "github.com/docecupcake/cupcake-backend/internal/errors"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionController serves the cart and checkout screens of a browsing session.
type SessionController struct {
	cartService     service.CartService
	checkoutService service.CheckoutService
	sessions        SessionEnder
}

func NewSessionController(cartService service.CartService, checkoutService service.CheckoutService, sessions SessionEnder) *SessionController {
	return &SessionController{
		cartService:     cartService,
		checkoutService: checkoutService,
		sessions:        sessions,
	}
}

type AddCartItemRequest struct {
	CupcakeID uint `json:"cupcake_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type UpdateCartNotesRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

func currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("Browsing session missing from context", nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.SessionNotFound, "Session unavailable")
		return nil, false
	}
	return sess, true
}

// GET /api/v1/session/cart
func (ctrl *SessionController) GetCart(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ctrl.cartService.View(sess)})
}

// POST /api/v1/session/cart/items
func (ctrl *SessionController) AddCartItem(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := ctrl.cartService.AddItem(sess, req.CupcakeID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCupcakeNotFound):
			apperrors.NotFound(c, apperrors.CupcakeNotFound, "Cupcake not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.RespondWithValidationError(c, map[string]string{"quantity": "must be at least 1"})
		case errors.Is(err, service.ErrSubmissionInProgress):
			ctrl.respondCheckoutError(c, err)
		default:
			middleware.GetLoggerFromContext(c).Error("Failed to add cart item", err, map[string]interface{}{
				"cupcake_id": req.CupcakeID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Added to cart",
		"cart":    view,
	})
}

// PATCH /api/v1/session/cart/items/:id
// A quantity below 1 removes the line; unknown ids are ignored.
func (ctrl *SessionController) UpdateCartQuantity(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateCartQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := ctrl.cartService.UpdateQuantity(sess, id, *req.Quantity)
	ctrl.respondCart(c, view, err)
}

// PUT /api/v1/session/cart/items/:id/notes
func (ctrl *SessionController) UpdateCartNotes(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateCartNotesRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := ctrl.cartService.UpdateNotes(sess, id, req.Notes)
	ctrl.respondCart(c, view, err)
}

// DELETE /api/v1/session/cart/items/:id
func (ctrl *SessionController) RemoveCartItem(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := ctrl.cartService.RemoveItem(sess, id)
	ctrl.respondCart(c, view, err)
}

// DELETE /api/v1/session/cart
func (ctrl *SessionController) ClearCart(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := ctrl.cartService.Clear(sess)
	ctrl.respondCart(c, view, err)
}

// StartCheckout snapshots the cart into a pending order
// POST /api/v1/session/checkout
func (ctrl *SessionController) StartCheckout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := ctrl.checkoutService.Start(sess)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"checkout": view})
}

// GET /api/v1/session/checkout
func (ctrl *SessionController) GetCheckout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := ctrl.checkoutService.View(sess)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": view})
}

// PUT /api/v1/session/checkout/delivery
func (ctrl *SessionController) SetDelivery(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var form checkout.DeliveryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"body": "is malformed"})
		return
	}
	view, err := ctrl.checkoutService.SetDelivery(sess, form)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": view})
}

// PUT /api/v1/session/checkout/payment
func (ctrl *SessionController) SetPayment(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var form checkout.PaymentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"body": "is malformed"})
		return
	}
	view, err := ctrl.checkoutService.SetPayment(sess, form)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": view})
}

// SubmitOrder places the pending order for the signed-in customer
// POST /api/v1/session/checkout/submit
func (ctrl *SessionController) SubmitOrder(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	order, err := ctrl.checkoutService.Submit(sess, userID)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed",
		"order":   model.NewOrderView(*order),
		"next":    "/confirmation",
	})
}

// EndSession discards the cart and pending order and expires the cookie
// DELETE /api/v1/session
func (ctrl *SessionController) EndSession(c *gin.Context) {
	ctrl.sessions.End(c)
	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}

func (ctrl *SessionController) respondCart(c *gin.Context, view service.CartView, err error) {
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

func (ctrl *SessionController) respondCheckoutError(c *gin.Context, err error) {
	var fields checkout.FieldErrors
	switch {
	case errors.As(err, &fields):
		apperrors.RespondWithValidationError(c, fields)
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    apperrors.AuthUnauthorized,
			"message":  "Please sign in to place your order",
			"redirect": "/login",
		})
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.CheckoutEmptyCart, "Your cart is empty")
	case errors.Is(err, service.ErrCheckoutNotStarted):
		apperrors.BadRequest(c, apperrors.CheckoutNotStarted, "Start checkout from your cart first")
	case errors.Is(err, service.ErrDeliveryMissing):
		apperrors.BadRequest(c, apperrors.CheckoutDeliveryMissing, "Delivery details are missing")
	case errors.Is(err, service.ErrPaymentMissing):
		apperrors.BadRequest(c, apperrors.CheckoutPaymentMissing, "Payment details are missing")
	case errors.Is(err, service.ErrSubmissionInProgress):
		apperrors.Conflict(c, apperrors.CheckoutSubmissionInProgress, "Your order is already being placed")
	default:
		middleware.GetLoggerFromContext(c).Error("Checkout failed", err)
		apperrors.InternalError(c, "We could not place your order. Please try again")
	}
}
