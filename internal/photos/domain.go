package photos

import "time"

// Scoring status of a shelf photo.
const (
	StatusPending = "pending"
	StatusScored  = "scored"
	StatusFailed  = "failed"
)

// Photo is an uploaded shelf photo and its scoring state. Score is in the
// 0-10 range once the analysis completes.
type Photo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	StoreID     int64     `json:"storeId"`
	Department  string    `json:"departmentName,omitempty"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Score       *float64  `json:"score,omitempty"`
	Analysis    string    `json:"analysisResult,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	// Employee fields are filled on manager listings only.
	EmployeeName     string `json:"employeeName,omitempty"`
	EmployeeUsername string `json:"employeeUsername,omitempty"`
}
