package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/app/service"
	"github.com/docecupcake/cupcake-backend/internal/checkout"
	apperrors "github.com/docecupcake/cupcake-backend/internal/errors"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	isoDate      = "2006-01-02"
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type OrderController struct {
	orderService  service.OrderService
	exportService service.ExportService
	now           func() time.Time
}

func NewOrderController(orderService service.OrderService, exportService service.ExportService) *OrderController {
	return &OrderController{
		orderService:  orderService,
		exportService: exportService,
		now:           time.Now,
	}
}

type OrderItemRequest struct {
	CupcakeID uint    `json:"cupcake_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"min=0"`
	Notes     string  `json:"notes"`
}

type CreateOrderRequest struct {
	UserID        uint               `json:"user_id" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Total         float64            `json:"total" binding:"required"`
	DeliveryDate  string             `json:"delivery_date" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// parseDate accepts YYYY-MM-DD and DD/MM/YYYY.
func parseDate(s string) (time.Time, error) {
	if d, err := time.ParseInLocation(isoDate, s, time.Local); err == nil {
		return d, nil
	}
	return checkout.ParseDeliveryDate(s, time.Local)
}

func orderViews(orders []model.Order) []model.OrderView {
	views := make([]model.OrderView, len(orders))
	for i, o := range orders {
		views[i] = model.NewOrderView(o)
	}
	return views
}

// filterFromQuery reads user_id, status, from and to. Customers are pinned to
// their own orders; asking for someone else's is reported as forbidden.
func (ctrl *OrderController) filterFromQuery(c *gin.Context, p middleware.Principal) (repository.OrderFilter, bool) {
	var filter repository.OrderFilter
	fields := map[string]string{}

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			fields["user_id"] = "is invalid"
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	if raw := c.Query("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.Valid() {
			fields["status"] = "must be one of pending, processing, delivered, cancelled"
		}
		filter.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			fields["from"] = "must be a date"
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			fields["to"] = "must be a date"
		}
		// inclusive of the whole day
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return filter, false
	}

	if !p.IsAdmin() {
		if filter.UserID != nil && *filter.UserID != p.UserID {
			middleware.GetLoggerFromContext(c).Warn("Customer requested another user's orders", map[string]interface{}{
				"user_id":   p.UserID,
				"requested": *filter.UserID,
			})
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You can only see your own orders")
			return filter, false
		}
		uid := p.UserID
		filter.UserID = &uid
	}
	return filter, true
}

// ListOrders returns orders visible to the caller
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	filter, ok := ctrl.filterFromQuery(c, p)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": p.UserID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Debug("Orders fetched", map[string]interface{}{
		"user_id": p.UserID,
		"count":   len(orders),
	})
	c.JSON(http.StatusOK, gin.H{
		"orders": orderViews(orders),
		"count":  len(orders),
	})
}

// GetOrder returns one order to its owner or an admin
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	if !p.IsAdmin() && order.UserID != p.UserID {
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You can only see your own orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": model.NewOrderView(*order)})
}

// CreateOrder persists an order sent as a whole
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if !p.IsAdmin() && req.UserID != p.UserID {
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You can only place orders for yourself")
		return
	}
	deliveryDate, err := parseDate(req.DeliveryDate)
	if err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"delivery_date": "must be a date"})
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.OrderItemInput{
			CupcakeID: it.CupcakeID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Notes:     it.Notes,
		}
	}

	order, err := ctrl.orderService.CreateOrder(service.CreateOrderInput{
		UserID:        req.UserID,
		Items:         items,
		Total:         req.Total,
		DeliveryDate:  deliveryDate,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		ctrl.respondError(c, err, 0)
		return
	}

	log.Info("Order created via API", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	c.JSON(http.StatusCreated, gin.H{"order": model.NewOrderView(*order)})
}

// UpdateOrderStatus sets the status of an order (admin)
// PATCH /api/v1/orders/:id
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.UpdateStatus(id, model.OrderStatus(req.Status))
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   model.NewOrderView(*order),
	})
}

// GetStats is the admin dashboard summary
// GET /api/v1/orders/stats
func (ctrl *OrderController) GetStats(c *gin.Context) {
	days := service.DefaultStatsDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apperrors.RespondWithValidationError(c, map[string]string{"days": "must be a positive number"})
			return
		}
		days = n
	}

	stats, err := ctrl.orderService.Stats(ctrl.now(), days)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to compute order stats", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ExportOrders downloads the filtered orders as xlsx (admin)
// GET /api/v1/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	filter, ok := ctrl.filterFromQuery(c, p)
	if !ok {
		return
	}

	var buf bytes.Buffer
	rows, err := ctrl.exportService.ExportOrders(&buf, filter)
	if err != nil {
		ctrl.respondError(c, err, 0)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", ctrl.now().Format(isoDate))
	middleware.GetLoggerFromContext(c).Debug("Export download prepared", map[string]interface{}{
		"user_id": p.UserID,
		"rows":    rows,
	})
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxMimeType, buf.Bytes())
}

func (ctrl *OrderController) respondError(c *gin.Context, err error, orderID uint) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrMissingOrderFields):
		apperrors.BadRequest(c, apperrors.OrderMissingFields, "Missing required order fields")
	case errors.Is(err, service.ErrInvalidOrderItem):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Order items need a cupcake and a quantity of at least 1")
	case errors.Is(err, service.ErrCupcakeNotFound):
		apperrors.NotFound(c, apperrors.CupcakeNotFound, "Cupcake not found")
	case errors.Is(err, service.ErrInvalidOrderStatus):
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
	case errors.Is(err, service.ErrInvalidTransition):
		apperrors.Conflict(c, apperrors.OrderInvalidTransition, "This status change is not allowed")
	default:
		middleware.GetLoggerFromContext(c).Error("Order operation failed", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
	}
}
