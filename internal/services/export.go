package services

import (
	"bytes"
	"encoding/csv"
	"time"
)

// ReportCSVHeader is the column order of the flattened assignment report.
var ReportCSVHeader = []string{
	"userName", "userEmail", "questionText", "questionCategory",
	"questionType", "status", "answer", "submittedAt",
}

// ExportReportCSV renders the flattened report. Fields holding commas or
// quotes come out quoted with internal quotes doubled, so re-parsing the
// output recovers the original values exactly.
func ExportReportCSV(rows []ExportRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(ReportCSVHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.UserName,
			r.UserEmail,
			r.QuestionText,
			r.QuestionCategory,
			string(r.QuestionType),
			string(r.Status),
			r.Answer,
			r.SubmittedAt,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportResult is a ready-to-serve download.
type ExportResult struct {
	Filename    string
	ContentType string
	Inline      bool // serve in the browser instead of as an attachment
	Data        []byte
}

type ExportService struct {
	reports *ReportService
	now     func() time.Time
}

func NewExportService(reports *ReportService) *ExportService {
	return &ExportService{
		reports: reports,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Export serializes the assignment report in the requested format. CSV and
// Excel share the same byte stream and differ only in content type and
// extension; pdf is a print-styled HTML document the browser turns into a
// PDF through its print dialog. An empty report is an error in every
// format so no empty file is ever produced.
func (s *ExportService) Export(format string) (*ExportResult, error) {
	rows, err := s.reports.ExportRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewInvalidError("no data to export")
	}
	date := s.now().Format("2006-01-02")
	switch format {
	case "", "csv":
		b, err := ExportReportCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    "assignment_report_" + date + ".csv",
			ContentType: "text/csv; charset=utf-8",
			Data:        b,
		}, nil
	case "excel":
		b, err := ExportReportCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    "assignment_report_" + date + ".xlsx",
			ContentType: "application/vnd.ms-excel",
			Data:        b,
		}, nil
	case "pdf":
		b, err := RenderReportHTML(rows, s.now())
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    "assignment_report_" + date + ".html",
			ContentType: "text/html; charset=utf-8",
			Inline:      true,
			Data:        b,
		}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}
