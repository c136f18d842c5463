// Package report reads and writes the spreadsheets exchanged with site office staff.
package report

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/kozaktomas/site-attendance/internal/database"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const logsSheet = "Attendance"

var logsHeader = []any{"Date", "Time", "Worker ID", "Worker", "Attendance", "PPE", "Details"}

// WriteLogs writes attendance rows as an xlsx workbook. names maps worker ids to names;
// rows of unknown workers get an empty name cell.
func WriteLogs(w io.Writer, rows []database.StoredAttendance, names map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", logsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(logsSheet, "A1", &logsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(logsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		values := []any{
			r.Date,
			r.CreatedAt.Local().Format("15:04:05"),
			r.WorkerID,
			names[r.WorkerID],
			string(r.AttendanceStatus),
			string(r.PPEStatus),
			r.PPEMissingItems,
		}
		if err := f.SetSheetRow(logsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(logsSheet, "A", "F", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(logsSheet, "G", "G", 40); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadWorkerNames returns the names in the first column of the first sheet. The first
// row is a header and is skipped, as are blank names.
func ReadWorkerNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	var names []string
	for rowIndex, row := range rows {
		if rowIndex == 0 {
			continue
		}
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			log.Printf("Skipping row %d: empty name", rowIndex+1)
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
