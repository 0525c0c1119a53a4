// Package export renders the exam schedule as a spreadsheet.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
)

// SheetName is the name of the only sheet in an exported workbook.
const SheetName = "Schedule"

// ContentType is the MIME type of an exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []any{"Code", "Date", "Shift", "Start", "End", "Room", "Subject Code", "Subject", "Proctor"}

// SessionSource lists sessions in schedule order.
type SessionSource interface {
	List(ctx context.Context) ([]exam.Session, error)
}

// LookupSource supplies the names shown next to session codes.
type LookupSource interface {
	ListSubjects(ctx context.Context) ([]catalog.Subject, error)
	ListShifts(ctx context.Context) ([]catalog.Shift, error)
}

// ScheduleExporter writes every allocated session to an XLSX workbook.
type ScheduleExporter struct {
	sessions SessionSource
	lookup   LookupSource
}

func NewScheduleExporter(sessions SessionSource, lookup LookupSource) *ScheduleExporter {
	return &ScheduleExporter{sessions: sessions, lookup: lookup}
}

// WriteXLSX writes the workbook to w and returns the number of sessions.
func (e *ScheduleExporter) WriteXLSX(ctx context.Context, w io.Writer) (int, error) {
	sessions, err := e.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: list sessions: %w", err)
	}
	subjects, err := e.lookup.ListSubjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: list subjects: %w", err)
	}
	shifts, err := e.lookup.ListShifts(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: list shifts: %w", err)
	}

	f, err := Workbook(sessions, subjects, shifts)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("export: write workbook: %w", err)
	}
	return len(sessions), nil
}

// Workbook builds the schedule sheet. Unknown subjects and shifts leave
// their name columns blank.
func Workbook(sessions []exam.Session, subjects []catalog.Subject, shifts []catalog.Shift) (*excelize.File, error) {
	subjectNames := make(map[string]string, len(subjects))
	for _, s := range subjects {
		subjectNames[s.Code] = s.Name
	}
	shiftsByCode := make(map[string]catalog.Shift, len(shifts))
	for _, s := range shifts {
		shiftsByCode[s.Code] = s
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: name sheet: %w", err)
	}

	rows := make([][]any, 0, len(sessions)+1)
	rows = append(rows, header)
	for _, s := range sessions {
		proctor := ""
		if s.Proctor != nil {
			proctor = *s.Proctor
		}
		shift := shiftsByCode[s.ShiftCode]
		rows = append(rows, []any{
			s.Code, s.Date, s.ShiftCode, shift.StartTime, shift.EndTime,
			s.RoomNumber, s.SubjectCode, subjectNames[s.SubjectCode], proctor,
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("export: row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.ColumnNumberToName(len(header))
		_ = f.SetCellStyle(SheetName, "A1", last+"1", bold)
		_ = f.SetColWidth(SheetName, "A", last, 14)
		_ = f.SetColWidth(SheetName, "H", "H", 32)
	}

	return f, nil
}
