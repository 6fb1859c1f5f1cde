package repository

import (
	"time"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Nil fields are not applied; From is
// inclusive and To exclusive.
type OrderFilter struct {
	UserID *uint
	Status *model.OrderStatus
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	CountByStatus() (map[model.OrderStatus]int64, error)
	CountCreatedBetween(from, to time.Time) (int64, error)
	CreatedTimesSince(since time.Time) ([]time.Time, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("Items.Cupcake").Preload("User")
}

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":    order.UserID,
		"total":      order.Total,
		"item_count": len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
			"total":   order.Total,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})
	return &order, nil
}

// FindWithFilter returns matching orders newest first.
func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, error) {
	fields := map[string]interface{}{}
	query := r.preloadOrder().Model(&model.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
		fields["user_id"] = *filter.UserID
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
		fields["status"] = *filter.Status
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
		fields["from"] = *filter.From
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
		fields["to"] = *filter.To
	}
	logger.Debug("Finding orders with filter", fields)

	var orders []model.Order
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders with filter", err)
		return nil, err
	}

	logger.Debug("Orders found with filter", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

// UpdateStatus overwrites the status. A missing order yields gorm.ErrRecordNotFound.
func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})
	return nil
}

func (r *orderRepository) CountByStatus() (map[model.OrderStatus]int64, error) {
	type row struct {
		Status model.OrderStatus
		Count  int64
	}
	var rows []row
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to count orders by status", err)
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		counts[s] = 0
	}
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *orderRepository) CountCreatedBetween(from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error; err != nil {
		logger.Error("Failed to count orders in range", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return 0, err
	}
	return count, nil
}

// CreatedTimesSince returns creation times so callers can bucket them in
// their own time zone without database specific date functions.
func (r *orderRepository) CreatedTimesSince(since time.Time) ([]time.Time, error) {
	var times []time.Time
	if err := r.db.Model(&model.Order{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &times).Error; err != nil {
		logger.Error("Failed to list order creation times", err, map[string]interface{}{
			"since": since,
		})
		return nil, err
	}
	return times, nil
}
