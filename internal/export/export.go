// Package export serializes an eligible semester's results for download.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/resulta/resulta-gateway/internal/model"
)

// ErrNotEligible is returned when a semester has not reached the completion
// threshold. Export stays blocked until at least half the subjects are
// completed; there is no override.
var ErrNotEligible = errors.New("semester is not eligible for export")

var header = []string{"Subject Code", "Title", "Credits", "Grade", "Status", "Updated"}

// SemesterCSV writes the semester's subjects as delimited text.
func SemesterCSV(w io.Writer, sem *model.SemesterGroup) error {
	if !sem.DownloadEligible {
		return ErrNotEligible
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, sub := range sem.Subjects {
		if err := cw.Write(subjectRow(sub)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SemesterXLSX writes the semester as a single-sheet workbook.
func SemesterXLSX(w io.Writer, sem *model.SemesterGroup) error {
	if !sem.DownloadEligible {
		return ErrNotEligible
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, sub := range sem.Subjects {
		cell := fmt.Sprintf("A%d", i+2)
		row := subjectRow(sub)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func subjectRow(sub model.Subject) []string {
	grade := sub.Grade
	if grade == "" {
		grade = "-"
	}
	return []string{
		sub.Code,
		sub.Title,
		fmt.Sprintf("%d", sub.CreditCount),
		grade,
		string(sub.Status),
		sub.UpdateDate.Format(time.RFC3339),
	}
}
