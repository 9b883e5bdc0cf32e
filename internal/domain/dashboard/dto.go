package dashboard

// StatsResponse summarizes the expenses visible to the requesting user:
// their own for employees, direct reports' for managers, the whole company
// for admins.
type StatsResponse struct {
	PendingCount        int64   `json:"pending_count"`
	ApprovedCount       int64   `json:"approved_count"`
	RejectedCount       int64   `json:"rejected_count"`
	TotalApprovedAmount float64 `json:"total_approved_amount"`
}
