package request

type UpdatePolicyRequest struct {
	AutoHoldOnCritical     bool `json:"auto_hold_on_critical"`
	StalenessWindowSeconds int  `json:"staleness_window_seconds"`
	DedupWindowSeconds     int  `json:"dedup_window_seconds"`
}
