package domain

// Statistics summarises application activity over a time window compared with
// the preceding window of equal length.
type Statistics struct {
	TimeRange string `json:"timeRange"`

	TotalPermits  int64   `json:"totalPermits"`
	PendingReview int64   `json:"pendingReview"`
	Approved      int64   `json:"approved"`
	Rejected      int64   `json:"rejected"`
	Revenue       float64 `json:"revenue"`

	PreviousTotalPermits  int64   `json:"previousTotalPermits"`
	PreviousPendingReview int64   `json:"previousPendingReview"`
	PreviousApproved      int64   `json:"previousApproved"`
	PreviousRevenue       float64 `json:"previousRevenue"`

	TotalPermitsChange  float64 `json:"totalPermitsChange"`
	PendingReviewChange float64 `json:"pendingReviewChange"`
	ApprovedChange      float64 `json:"approvedChange"`
	RevenueChange       float64 `json:"revenueChange"`
}
