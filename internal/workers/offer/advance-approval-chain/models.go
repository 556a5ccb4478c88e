package advanceapprovalchain

type Input struct {
	OfferID string `json:"offerId"`
}

type Output struct {
	OfferID      string `json:"offerId"`
	Status       string `json:"status"`
	NextApprover string `json:"nextApprover,omitempty"`
	Notified     bool   `json:"notified"`
}
