package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const ordersSheet = "Orders"

var orderColumns = []string{
	"Order", "Created", "Customer", "Email", "Delivery date", "Items", "Payment", "Status", "Total",
}

type ExportService interface {
	// ExportOrders writes the filtered orders as an xlsx workbook, one row per
	// order, and returns the number of rows written.
	ExportOrders(w io.Writer, filter repository.OrderFilter) (int, error)
}

type exportService struct {
	orders OrderService
}

func NewExportService(orders OrderService) ExportService {
	return &exportService{orders: orders}
}

func (s *exportService) ExportOrders(w io.Writer, filter repository.OrderFilter) (int, error) {
	orders, err := s.orders.ListOrders(filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return 0, err
	}
	for i, title := range orderColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ordersSheet, cell, title); err != nil {
			return 0, err
		}
	}

	for i, order := range orders {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(ordersSheet, cell, &[]interface{}{
			order.ID,
			order.CreatedAt.Format("2006-01-02 15:04"),
			customerName(order),
			customerEmail(order),
			order.DeliveryDate.Format("02/01/2006"),
			describeItems(order.Items),
			order.PaymentMethod,
			order.Status.Label(),
			order.Total,
		}); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if err := f.Write(w); err != nil {
		logger.Error("Failed to write orders workbook", err)
		return 0, err
	}

	logger.Info("Orders exported", map[string]interface{}{
		"rows": len(orders),
	})
	return len(orders), nil
}

func customerName(o model.Order) string {
	if o.User == nil {
		return ""
	}
	return o.User.Name
}

func customerEmail(o model.Order) string {
	if o.User == nil {
		return ""
	}
	return o.User.Email
}

// describeItems renders lines as "2x Chocolate Delight (sem glúten)".
func describeItems(items []model.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := fmt.Sprintf("#%d", it.CupcakeID)
		if it.Cupcake != nil {
			name = it.Cupcake.Name
		}
		line := fmt.Sprintf("%dx %s", it.Quantity, name)
		if it.Notes != "" {
			line += " (" + it.Notes + ")"
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "; ")
}
