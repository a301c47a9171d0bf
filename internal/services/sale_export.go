package services

import (
	"context"
	"fmt"
	"io"

	"pharmacy_pos_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	salesSheet      = "Sales"
	exportPageSize  = 500
	exportTimestamp = "2006-01-02 15:04:05"
)

var salesHeader = []interface{}{
	"Sale ID", "Receipt Number", "Date (UTC)", "Employee", "Customer ID", "Payment Type",
	"Subtotal", "Tax", "Discount", "Total", "Points Earned",
}

// ExportSales writes every sale matching filters as an XLSX workbook.
func (s *saleService) ExportSales(ctx context.Context, filters models.SaleFilters, w io.Writer) error {
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return fmt.Errorf("%w: dateTo is before dateFrom", ErrValidation)
	}

	latest, err := s.saleRepo.GetLatestSaleID(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sales for export: %w", err)
	}

	// Sales committed after the export started are left out.
	var all []models.Sale
	cursor := latest + 1
	for {
		page, err := s.saleRepo.GetSalesBefore(ctx, filters, cursor, exportPageSize)
		if err != nil {
			return fmt.Errorf("failed to load sales for export: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			break
		}
		cursor = page[len(page)-1].ID
	}

	return WriteSalesWorkbook(w, all)
}

// WriteSalesWorkbook renders sales as one sheet with a header row and a totals row.
func WriteSalesWorkbook(w io.Writer, sales []models.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(salesSheet, "A1", &salesHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	sum := map[string]decimal.Decimal{}
	for i, sale := range sales {
		var customer interface{}
		if sale.CustomerID != nil {
			customer = *sale.CustomerID
		}
		row := []interface{}{
			sale.ID,
			sale.ReceiptNumber,
			sale.CreatedAt.UTC().Format(exportTimestamp),
			sale.EmployeeUsername,
			customer,
			sale.PaymentTypeCode,
			sale.Subtotal.InexactFloat64(),
			sale.Tax.InexactFloat64(),
			sale.Discount.InexactFloat64(),
			sale.Total.InexactFloat64(),
			sale.LoyaltyPointsEarned,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write sale %d: %w", sale.ID, err)
		}
		sum["subtotal"] = sum["subtotal"].Add(sale.Subtotal)
		sum["tax"] = sum["tax"].Add(sale.Tax)
		sum["discount"] = sum["discount"].Add(sale.Discount)
		sum["total"] = sum["total"].Add(sale.Total)
	}

	totalsRow := []interface{}{
		"TOTAL", fmt.Sprintf("%d sales", len(sales)), nil, nil, nil, nil,
		sum["subtotal"].InexactFloat64(), sum["tax"].InexactFloat64(),
		sum["discount"].InexactFloat64(), sum["total"].InexactFloat64(),
	}
	cell, err := excelize.CoordinatesToCellName(1, len(sales)+2)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(salesSheet, cell, &totalsRow); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	if err := f.SetColWidth(salesSheet, "B", "D", 20); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
