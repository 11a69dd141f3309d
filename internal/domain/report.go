package domain

import "time"

// Report is one district's submission for a single period.
type Report struct {
	ID          int64
	District    string
	Year        int
	Quarter     string
	Title       string
	Description string
	Filename    *string
	SubmittedAt time.Time
	SubmittedBy string
}

// PeriodKey identifies the single slot a district may fill per period.
type PeriodKey struct {
	District string
	Year     int
	Quarter  string
}

// Key returns the uniqueness key of the report.
func (r *Report) Key() PeriodKey {
	return PeriodKey{District: r.District, Year: r.Year, Quarter: r.Quarter}
}

// StoredFile returns the stored-file reference or an empty string.
func (r *Report) StoredFile() string {
	if r.Filename == nil {
		return ""
	}
	return *r.Filename
}
