package models

import "time"

// Entity is a company, leader or manager profile with a derived score.
type Entity struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"` // company, leader, manager
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Industry      string    `json:"industry,omitempty"`
	Score         float64   `json:"score"`
	EmployeeCount *int64    `json:"employee_count,omitempty"`
	AnnualRevenue *float64  `json:"annual_revenue,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SubmitEvidenceURL returns the page path where evidence for a company is filed.
func SubmitEvidenceURL(slug string) string {
	return "/company/" + slug + "/submit-evidence"
}
