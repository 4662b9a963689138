package request

type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
