package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pending",
	OrderStatusProcessing: "Processing",
	OrderStatusDelivered:  "Delivered",
	OrderStatusCancelled:  "Cancelled",
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display text shown to customers and staff.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

var ErrInvalidTransition = errors.New("status transition not allowed")

// TransitionPolicy decides whether an order may move from one status to another.
type TransitionPolicy interface {
	Allow(from, to OrderStatus) error
}

// FreeTransitions lets staff assign any valid status, including the current one.
type FreeTransitions struct{}

func (FreeTransitions) Allow(_, to OrderStatus) error {
	if !to.Valid() {
		return ErrInvalidTransition
	}
	return nil
}

// StrictTransitions only allows forward moves; delivered and cancelled are terminal.
type StrictTransitions struct{}

var strictTable = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusDelivered, OrderStatusCancelled},
}

func (StrictTransitions) Allow(from, to OrderStatus) error {
	for _, next := range strictTable[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// CalendarDate keeps the calendar day of t at midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Total         float64        `gorm:"not null" json:"total"`
	DeliveryDate  time.Time      `gorm:"type:date;not null" json:"delivery_date"`
	PaymentMethod string         `gorm:"type:varchar(30);not null" json:"payment_method"`
	Status        OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	CupcakeID uint    `gorm:"not null;index" json:"cupcake_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"` // unit price when the order was placed
	Notes     string  `gorm:"type:text" json:"notes,omitempty"`

	Cupcake *Cupcake `gorm:"foreignKey:CupcakeID" json:"cupcake,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderView adds the status label to an order for read endpoints.
type OrderView struct {
	Order
	StatusLabel string `json:"status_label"`
}

func NewOrderView(o Order) OrderView {
	return OrderView{Order: o, StatusLabel: o.Status.Label()}
}

// OrderStats is the admin dashboard summary.
type OrderStats struct {
	TodayOrders int64                 `json:"today_orders"`
	ReadyOrders int64                 `json:"ready_orders"` // orders still pending
	TotalOrders int64                 `json:"total_orders"`
	ByStatus    map[OrderStatus]int64 `json:"by_status"`
	Daily       []DailyOrderCount     `json:"daily"`
}

type DailyOrderCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
