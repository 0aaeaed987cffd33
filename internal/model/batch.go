package model

// UserResult is the outcome of one user's one-click start task.
type UserResult struct {
	UserID       string `json:"user_id"`
	OK           bool   `json:"ok"`
	DurationMs   int64  `json:"duration_ms"`
	Data         string `json:"data,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// BatchRun is the aggregate report of one one-click start pass.
// It holds exactly one UserResult per selected user, in selection order.
type BatchRun struct {
	ExecutedAt    string       `json:"executed_at"`
	ExecutedCount int          `json:"executed_count"`
	OKCount       int          `json:"ok_count"`
	FailCount     int          `json:"fail_count"`
	Message       string       `json:"message,omitempty"`
	Results       []UserResult `json:"results"`
}
