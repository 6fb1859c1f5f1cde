package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/docecupcake/cupcake-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrMissingOrderFields = errors.New("missing required order fields")
	ErrInvalidOrderItem   = errors.New("invalid order item")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 90
)

type OrderItemInput struct {
	CupcakeID uint
	Quantity  int
	Price     float64
	Notes     string
}

type CreateOrderInput struct {
	UserID        uint
	Items         []OrderItemInput
	Total         float64
	DeliveryDate  time.Time
	PaymentMethod string
}

type OrderService interface {
	CreateOrder(input CreateOrderInput) (*model.Order, error)
	GetOrder(id uint) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) (*model.Order, error)
	Stats(now time.Time, days int) (*model.OrderStats, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cupcakeRepo repository.CupcakeRepository
	policy      model.TransitionPolicy
}

// NewOrderService uses FreeTransitions when policy is nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cupcakeRepo repository.CupcakeRepository,
	policy model.TransitionPolicy,
) OrderService {
	if policy == nil {
		policy = model.FreeTransitions{}
	}
	return &orderService{
		orderRepo:   orderRepo,
		cupcakeRepo: cupcakeRepo,
		policy:      policy,
	}
}

func missingFields(input CreateOrderInput) []string {
	var missing []string
	if input.UserID == 0 {
		missing = append(missing, "user_id")
	}
	if len(input.Items) == 0 {
		missing = append(missing, "items")
	}
	if input.DeliveryDate.IsZero() {
		missing = append(missing, "delivery_date")
	}
	if input.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	return missing
}

// CreateOrder persists a new pending order. The client total is stored as
// sent; a mismatch with the item sum is only logged.
func (s *orderService) CreateOrder(input CreateOrderInput) (*model.Order, error) {
	if missing := missingFields(input); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingOrderFields, missing)
	}

	items := make([]model.OrderItem, 0, len(input.Items))
	sum := decimal.Zero
	checked := make(map[uint]bool, len(input.Items))
	for i, it := range input.Items {
		if it.CupcakeID == 0 || it.Quantity < 1 || it.Price < 0 {
			return nil, fmt.Errorf("%w: item %d", ErrInvalidOrderItem, i)
		}
		if !checked[it.CupcakeID] {
			if _, err := s.cupcakeRepo.FindByID(it.CupcakeID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: %d", ErrCupcakeNotFound, it.CupcakeID)
				}
				return nil, err
			}
			checked[it.CupcakeID] = true
		}
		sum = sum.Add(util.LineTotal(it.Price, it.Quantity))
		items = append(items, model.OrderItem{
			CupcakeID: it.CupcakeID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Notes:     it.Notes,
		})
	}

	if !util.SameAmount(input.Total, util.ToFloat(sum)) {
		logger.Warn("Order total differs from item sum", map[string]interface{}{
			"user_id":      input.UserID,
			"client_total": input.Total,
			"item_sum":     sum.StringFixed(util.MoneyPlaces),
		})
	}

	order := &model.Order{
		UserID:        input.UserID,
		Total:         input.Total,
		DeliveryDate:  model.CalendarDate(input.DeliveryDate),
		PaymentMethod: input.PaymentMethod,
		Status:        model.OrderStatusPending,
		Items:         items,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total,
	})
	return s.GetOrder(order.ID)
}

func (s *orderService) GetOrder(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidOrderStatus
	}
	return s.orderRepo.FindWithFilter(filter)
}

// UpdateStatus applies the transition policy and overwrites the status.
// Concurrent updates are last writer wins.
func (s *orderService) UpdateStatus(id uint, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Allow(order.Status, status); err != nil {
		logger.Warn("Order status transition rejected", map[string]interface{}{
			"order_id": id,
			"from":     order.Status,
			"to":       status,
		})
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": id,
		"from":     order.Status,
		"to":       status,
	})
	order.Status = status
	return order, nil
}

// Stats summarizes orders for the admin dashboard. Days are calendar days in
// now's location, the last one being today.
func (s *orderService) Stats(now time.Time, days int) (*model.OrderStats, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	if days > MaxStatsDays {
		days = MaxStatsDays
	}

	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	todayCount, err := s.orderRepo.CountCreatedBetween(today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	byStatus, err := s.orderRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}

	first := today.AddDate(0, 0, -(days - 1))
	times, err := s.orderRepo.CreatedTimesSince(first)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string]int64, days)
	for _, t := range times {
		buckets[t.In(loc).Format("2006-01-02")]++
	}
	daily := make([]model.DailyOrderCount, 0, days)
	for i := 0; i < days; i++ {
		key := first.AddDate(0, 0, i).Format("2006-01-02")
		daily = append(daily, model.DailyOrderCount{Date: key, Count: buckets[key]})
	}

	return &model.OrderStats{
		TodayOrders: todayCount,
		ReadyOrders: byStatus[model.OrderStatusPending],
		TotalOrders: total,
		ByStatus:    byStatus,
		Daily:       daily,
	}, nil
}
