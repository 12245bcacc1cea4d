package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"prozon/internal"
)

var exportHeaders = []string{
	"Numero_Commande", "Ref_Commande", "Date",
	"Client", "Adresse_Livraison", "Ville", "Telephone",
	"Ref_Prozon", "Ref_EHS", "Quantite",
	"Poids_Unitaire", "Poids_Total", "Statut",
}

// flattenOrders produces one row per enriched line item.
func flattenOrders(orders []internal.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, order := range orders {
		for _, item := range order.Items {
			rows = append(rows, []string{
				order.Number,
				order.Reference,
				order.Date,
				order.Address.FullName,
				order.Address.Street,
				order.Address.City,
				order.Address.Phone,
				item.ProzonRef,
				derefString(item.EHSRef),
				strconv.Itoa(item.Quantity),
				formatFloat(item.UnitWeight),
				formatFloat(item.TotalWeight),
				string(item.Status),
			})
		}
	}
	return rows
}

// ExportOrdersToCSV writes the flat export with a UTF-8 BOM so accented
// characters survive a spreadsheet import.
func ExportOrdersToCSV(orders []internal.Order, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders); err != nil {
		return err
	}
	for _, row := range flattenOrders(orders) {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportOrdersToXLSX writes the same flat rows as a workbook.
func ExportOrdersToXLSX(orders []internal.Order, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for r, row := range flattenOrders(orders) {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
