package services

import (
	"bytes"
	"html/template"
	"sort"
	"time"

	"github.com/askwell/askwell/internal/models"
)

// printDelayMS gives the browser time to finish layout before the print
// dialog opens.
const printDelayMS = 1000

type reportDoc struct {
	GeneratedOn string
	PrintDelay  int
	Users       []reportUserSection
}

type reportUserSection struct {
	Name  string
	Email string
	Items []reportItem
}

type reportItem struct {
	QuestionText string
	Category     string
	Type         models.QuestionType
	StatusClass  string
	StatusText   string
	ShowAnswer   bool
	Answer       string
	Selections   []string
	SubmittedAt  string
}

// RenderReportHTML builds the standalone print-styled document for PDF
// export: rows grouped by user in name order, each user's items ordered by
// category then question text, completed answers rendered per question
// type.
func RenderReportHTML(rows []ExportRow, generatedAt time.Time) ([]byte, error) {
	byUser := map[string][]ExportRow{}
	for _, r := range rows {
		byUser[r.UserName] = append(byUser[r.UserName], r)
	}
	names := make([]string, 0, len(byUser))
	for n := range byUser {
		names = append(names, n)
	}
	sort.Strings(names)

	doc := reportDoc{
		GeneratedOn: generatedAt.Format("2006-01-02"),
		PrintDelay:  printDelayMS,
	}
	for _, name := range names {
		items := byUser[name]
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].QuestionCategory != items[j].QuestionCategory {
				return items[i].QuestionCategory < items[j].QuestionCategory
			}
			return items[i].QuestionText < items[j].QuestionText
		})
		section := reportUserSection{Name: name, Email: items[0].UserEmail}
		for _, it := range items {
			item := reportItem{
				QuestionText: it.QuestionText,
				Category:     it.QuestionCategory,
				Type:         it.QuestionType,
				StatusClass:  "status-assigned",
				StatusText:   "Assigned",
			}
			if it.Status == models.StatusCompleted {
				item.StatusClass = "status-completed"
				item.StatusText = "Completed"
			}
			if it.Status == models.StatusCompleted && it.Answer != notAnswered {
				item.ShowAnswer = true
				item.Answer = it.Answer
				if it.QuestionType == models.QuestionCheckbox {
					item.Selections = SplitAnswer(it.Answer)
				}
				if it.SubmittedAt != "N/A" {
					item.SubmittedAt = it.SubmittedAt
				}
			}
			section.Items = append(section.Items, item)
		}
		doc.Users = append(doc.Users, section)
	}

	buf := &bytes.Buffer{}
	if err := reportTemplate.Execute(buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Assignment Report - {{.GeneratedOn}}</title>
<style>
* { box-sizing: border-box; margin: 0; padding: 0; }
@page { size: auto; margin: 10mm; }
html, body { font-family: Arial, sans-serif; font-size: 12px; color: #333; line-height: 1.4; background: #fff; }
.container { max-width: 100%; }
.report-header { text-align: center; padding-bottom: 10px; border-bottom: 1px solid #eaeaea; margin-bottom: 15px; }
.report-title { color: #2563eb; font-size: 18px; font-weight: bold; margin-bottom: 8px; }
.report-meta { text-align: right; font-size: 10px; color: #666; margin-bottom: 15px; }
.user-section { margin-bottom: 20px; page-break-inside: avoid; }
.user-header { background-color: #f3f4f6; padding: 8px 10px; border-radius: 4px; margin-bottom: 10px; border-left: 4px solid #2563eb; }
.user-name { font-size: 14px; font-weight: bold; }
.user-email { font-size: 12px; color: #666; margin-top: 2px; }
.question-card { border: 1px solid #e5e7eb; border-radius: 4px; padding: 10px; margin-bottom: 10px; background-color: #fff; page-break-inside: avoid; }
.question-text { font-weight: bold; margin-bottom: 8px; font-size: 12px; }
.question-meta { font-size: 10px; color: #666; margin-bottom: 8px; }
.answer-section { background-color: #f9fafb; border-radius: 4px; padding: 8px 10px; margin-top: 8px; }
.answer-header { font-size: 10px; text-transform: uppercase; color: #666; margin-bottom: 4px; border-bottom: 1px solid #e5e7eb; padding-bottom: 2px; }
.answer-text { margin: 4px 0; font-size: 11px; }
.answer-option { display: flex; align-items: center; margin: 4px 0; font-size: 11px; }
.answer-bullet { width: 6px; height: 6px; border-radius: 50%; background-color: #2563eb; margin-right: 6px; flex-shrink: 0; }
.answer-checkbox { width: 6px; height: 6px; background-color: #2563eb; margin-right: 6px; flex-shrink: 0; }
.status-tag { display: inline-block; padding: 2px 6px; border-radius: 10px; font-size: 10px; font-weight: bold; margin-left: 5px; }
.status-completed { background-color: #dcfce7; color: #166534; }
.status-assigned { background-color: #fef9c3; color: #854d0e; }
.submitted-date { font-size: 9px; color: #666; margin-top: 6px; }
@media print {
  body { width: 100%; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
  .user-section { page-break-inside: avoid; }
  .user-section + .user-section { page-break-before: always; }
  .question-card { page-break-inside: avoid; }
}
</style>
</head>
<body>
<div class="container">
<div class="report-header">
<div class="report-title">Question Assignments Report</div>
<div class="report-meta">Generated on: {{.GeneratedOn}}</div>
</div>
{{range .Users}}<div class="user-section">
<div class="user-header">
<p class="user-name">{{.Name}}</p>
<p class="user-email">{{.Email}}</p>
</div>
{{range .Items}}<div class="question-card">
<p class="question-text">{{.QuestionText}}</p>
<p class="question-meta">Category: {{.Category}} | Type: {{.Type}}
<span class="status-tag {{.StatusClass}}">{{.StatusText}}</span></p>
{{if .ShowAnswer}}<div class="answer-section">
<p class="answer-header">Answer:</p>
{{if eq .Type "text"}}<p class="answer-text">{{.Answer}}</p>
{{else if eq .Type "multiple_choice"}}<div class="answer-option"><div class="answer-bullet"></div><span>{{.Answer}}</span></div>
{{else}}{{range .Selections}}<div class="answer-option"><div class="answer-checkbox"></div><span>{{.}}</span></div>
{{end}}{{end}}
{{if .SubmittedAt}}<p class="submitted-date">Submitted on {{.SubmittedAt}}</p>{{end}}
</div>{{end}}
</div>
{{end}}</div>
{{end}}</div>
<script>
window.addEventListener("load", function () {
  setTimeout(function () { window.print(); }, {{.PrintDelay}});
});
</script>
</body>
</html>
`))
