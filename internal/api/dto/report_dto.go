package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/report-portal/internal/domain"
)

// SubmitReportForm holds the multipart fields of a submission. The file part
// is read separately.
type SubmitReportForm struct {
	Year        int    `form:"year"`
	Quarter     string `form:"quarter"`
	Title       string `form:"title"`
	Description string `form:"description"`
}

// ReportResponse is the public view of a report. The stored-file key is not
// exposed; clients download through FileURL.
type ReportResponse struct {
	ID          int64     `json:"id"`
	District    string    `json:"district"`
	Year        int       `json:"year"`
	Quarter     string    `json:"quarter"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HasFile     bool      `json:"has_file"`
	FileURL     string    `json:"file_url,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	SubmittedBy string    `json:"submitted_by"`
}

// NewReportResponse maps a domain report.
func NewReportResponse(report *domain.Report) ReportResponse {
	resp := ReportResponse{
		ID:          report.ID,
		District:    report.District,
		Year:        report.Year,
		Quarter:     report.Quarter,
		Title:       report.Title,
		Description: report.Description,
		SubmittedAt: report.SubmittedAt,
		SubmittedBy: report.SubmittedBy,
	}
	if report.StoredFile() != "" {
		resp.HasFile = true
		resp.FileURL = fmt.Sprintf("/reports/%d/file", report.ID)
	}
	return resp
}

// NewReportList maps a listing.
func NewReportList(reports []domain.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, NewReportResponse(&reports[i]))
	}
	return out
}
