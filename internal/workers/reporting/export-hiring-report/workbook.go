package exporthiringreport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"hiresphere-backend/internal/store"
)

const summarySheet = "Pipeline Summary"

var summaryHeaders = []string{
	"Job", "Job Status", "Applications", "Applied", "Shortlisted",
	"Assessment", "Interview", "Offer", "Hired", "Rejected",
	"Avg Match Score", "Assessments Graded", "Pass Rate",
}

// BuildWorkbook renders per-job funnel statistics into a styled workbook.
// The caller owns the returned file and must Close it.
func BuildWorkbook(stats []store.JobPipelineStats) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)

	f.SetColWidth(summarySheet, "A", "A", 32)
	f.SetColWidth(summarySheet, "B", "J", 12)
	f.SetColWidth(summarySheet, "K", "M", 16)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, header := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summarySheet, cell, header)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(summaryHeaders), 1)
	f.SetCellStyle(summarySheet, "A1", endCell, headerStyle)

	for row, s := range stats {
		values := []interface{}{
			s.JobTitle, s.JobStatus, s.Applications, s.Applied, s.Shortlisted,
			s.Assessment, s.Interview, s.Offer, s.Hired, s.Rejected,
			s.AvgMatchScore, s.AssignmentsGraded,
			fmt.Sprintf("%.0f%%", s.PassRate()*100),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(summarySheet, cell, v)
		}
	}
	return f, nil
}
