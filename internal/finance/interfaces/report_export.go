package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"e2d/internal/finance/application"
	"e2d/internal/finance/viewmodel"
)

// BuildReportPDF renders a module report as PDF: metadata header, stats and
// the flattened record table.
func BuildReportPDF(title string, generatedAt time.Time, vm viewmodel.ViewModel) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %s", vm.TotalLabel))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Count: %d", vm.Count))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average: %s", vm.AverageLabel))
	pdf.Ln(8)

	widths := []float64{50, 40, 30, 40, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range vm.Headers {
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range vm.Rows {
		for i, field := range row {
			align := "L"
			if field.Header == "Amount" {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, field.Value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders a module report as a two-sheet workbook.
func BuildReportXLSX(title string, generatedAt time.Time, vm viewmodel.ViewModel) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	rowsSheet := "records"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", title)
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Total")
	_ = f.SetCellValue(summarySheet, "B4", vm.TotalLabel)
	_ = f.SetCellValue(summarySheet, "A5", "Count")
	_ = f.SetCellValue(summarySheet, "B5", vm.Count)
	_ = f.SetCellValue(summarySheet, "A6", "Average")
	_ = f.SetCellValue(summarySheet, "B6", vm.AverageLabel)
	for i, point := range vm.StatusSeries {
		row := 8 + i
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), point.Name)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), point.Value.String())
	}

	for i, header := range vm.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(rowsSheet, cell, header)
	}
	for rowIdx, row := range vm.Rows {
		for colIdx, field := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(rowsSheet, cell, field.Value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReportCSV streams the flattened record table as CSV.
func WriteReportCSV(w io.Writer, vm viewmodel.ViewModel) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(vm.Headers); err != nil {
		return err
	}
	for _, row := range vm.Rows {
		values := make([]string, len(row))
		for i, field := range row {
			values[i] = field.Value
		}
		if err := writer.Write(values); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteGlobalCSV streams the per-module summary rows followed by the
// interest and net balance lines.
func WriteGlobalCSV(w io.Writer, report application.GlobalReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Module", "Count", "Total", "Average"}); err != nil {
		return err
	}
	for _, module := range []struct {
		label  string
		report application.ModuleReport
	}{
		{"Cotisations", report.Dues},
		{"Epargnes", report.Savings},
		{"Prets", report.Loans},
		{"Sanctions", report.Sanctions},
		{"Aides", report.Aid},
	} {
		agg := module.report.Aggregate
		row := []string{module.label, fmt.Sprintf("%d", agg.Count), agg.Total.String(), agg.Average.String()}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	for _, line := range [][]string{
		{"Interets prets", "", report.LoanSummary.InterestAccrued.String(), ""},
		{"Interets epargne estimes", "", report.SavingsSummary.EstimatedInterest.String(), ""},
		{"Solde net", "", report.NetBalance.String(), ""},
	} {
		if err := writer.Write(line); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// BuildGlobalPDF renders the cross-module treasury report.
func BuildGlobalPDF(report application.GlobalReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rapport Financier Global")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	if report.MeetingOutsidePeriod {
		pdf.Cell(0, 6, "Warning: selected meeting falls outside the selected fiscal period")
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Module", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Count", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, module := range []struct {
		label  string
		report application.ModuleReport
	}{
		{"Cotisations", report.Dues},
		{"Epargnes", report.Savings},
		{"Prets", report.Loans},
		{"Sanctions", report.Sanctions},
		{"Aides", report.Aid},
	} {
		pdf.CellFormat(70, 6, module.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", module.report.Aggregate.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, viewmodel.FormatFCFA(module.report.Aggregate.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Interets prets: %s", viewmodel.FormatFCFA(report.LoanSummary.InterestAccrued)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Interets epargne estimes: %s", viewmodel.FormatFCFA(report.SavingsSummary.EstimatedInterest)))
	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Solde net: %s", viewmodel.FormatFCFA(report.NetBalance)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildGlobalXLSX renders the cross-module treasury report as a workbook
// with one summary sheet and one sheet per module.
func BuildGlobalXLSX(report application.GlobalReport) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	f.SetSheetName("Sheet1", summarySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Rapport Financier Global")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", report.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Solde net")
	_ = f.SetCellValue(summarySheet, "B4", viewmodel.FormatFCFA(report.NetBalance))
	_ = f.SetCellValue(summarySheet, "A5", "Interets prets")
	_ = f.SetCellValue(summarySheet, "B5", viewmodel.FormatFCFA(report.LoanSummary.InterestAccrued))
	_ = f.SetCellValue(summarySheet, "A6", "Interets epargne estimes")
	_ = f.SetCellValue(summarySheet, "B6", viewmodel.FormatFCFA(report.SavingsSummary.EstimatedInterest))
	if report.MeetingOutsidePeriod {
		_ = f.SetCellValue(summarySheet, "A8", "Warning")
		_ = f.SetCellValue(summarySheet, "B8", "selected meeting falls outside the selected fiscal period")
	}

	for _, module := range []struct {
		sheet  string
		report application.ModuleReport
	}{
		{"cotisations", report.Dues},
		{"epargnes", report.Savings},
		{"prets", report.Loans},
		{"sanctions", report.Sanctions},
		{"aides", report.Aid},
	} {
		if _, err := f.NewSheet(module.sheet); err != nil {
			return nil, err
		}
		vm := viewmodel.Assemble(module.report.Aggregate, module.report.Records)
		for i, header := range vm.Headers {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(module.sheet, cell, header)
		}
		for rowIdx, row := range vm.Rows {
			for colIdx, field := range row {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				if err != nil {
					return nil, err
				}
				_ = f.SetCellValue(module.sheet, cell, field.Value)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
