package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Column struct {
	Header string
	Width  float64
}

// Sheet is a single worksheet: a bold header row followed by Rows.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// WriteXLSX renders sheet as an .xlsx workbook to w.
func WriteXLSX(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headers := make([]any, len(sheet.Columns))
	for i, col := range sheet.Columns {
		headers[i] = col.Header

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(sheet.Name, name, name, col.Width); err != nil {
				return fmt.Errorf("set column width: %w", err)
			}
		}
	}

	if err := f.SetSheetRow(sheet.Name, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if len(sheet.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sheet.Columns), 1)
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

func ContactRequestsSheet(items []model.ContactRequest) Sheet {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{item.ID, item.Name, item.Email, item.ContactNumber, item.Message, item.CreatedAt})
	}

	return Sheet{
		Name: "Contact Requests",
		Columns: []Column{
			{Header: "ID", Width: 8},
			{Header: "Name", Width: 24},
			{Header: "Email", Width: 30},
			{Header: "Contact Number", Width: 18},
			{Header: "Message", Width: 60},
			{Header: "Created At", Width: 24},
		},
		Rows: rows,
	}
}

func DemoRequestsSheet(items []model.DemoRequest) Sheet {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.ID, item.Name, item.Email, item.ContactNumber,
			item.ServiceName(), item.PreferredDatetime, item.Message, item.SubmittedAt,
		})
	}

	return Sheet{
		Name: "Demo Requests",
		Columns: []Column{
			{Header: "ID", Width: 8},
			{Header: "Name", Width: 24},
			{Header: "Email", Width: 30},
			{Header: "Contact Number", Width: 18},
			{Header: "Service", Width: 24},
			{Header: "Preferred Date/Time", Width: 24},
			{Header: "Message", Width: 60},
			{Header: "Submitted At", Width: 24},
		},
		Rows: rows,
	}
}
