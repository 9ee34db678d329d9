package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

var timetableHeaders = []string{"Sr.No", "Day", "Course Code", "Course Name", "Time", "Instructor Name", "Room No"}

// column widths in mm, summing to the printable A4 width.
var timetableWidths = []float64{14, 26, 28, 46, 30, 28, 18}

// PDFExporter renders a stored timetable into a tabular PDF document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces a PDF listing every class in day order, one row per class.
func (e *PDFExporter) Render(timetable *models.Timetable) ([]byte, error) {
	if timetable == nil {
		return nil, fmt.Errorf("render pdf: nil timetable")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := fmt.Sprintf("%s - Semester %s (%s Shift)", timetable.Department, timetable.Semester, timetable.Shift)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	for i, header := range timetableHeaders {
		pdf.CellFormat(timetableWidths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	serial := 0
	for _, day := range timetable.Schedule {
		for _, class := range day.Classes {
			serial++
			row := []string{
				strconv.Itoa(serial),
				day.Day,
				class.CourseCode,
				class.CourseName,
				class.TimeSlot,
				class.InstructorName,
				class.RoomNumber,
			}
			for i, value := range row {
				pdf.CellFormat(timetableWidths[i], 7, value, "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
