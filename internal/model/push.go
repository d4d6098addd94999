package model

// PushMessage is the provider-neutral multicast payload.
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// SendResponse is the outcome for one token of a multicast.
// Responses are index-aligned with the tokens sent.
type SendResponse struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MulticastResult mirrors the per-token breakdown the push providers
// return. Failures inside it are partial delivery, not an overall error.
type MulticastResult struct {
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
	Responses    []SendResponse `json:"responses"`
}

// Add appends one token outcome and keeps the counters in step.
func (r *MulticastResult) Add(resp SendResponse) {
	r.Responses = append(r.Responses, resp)
	if resp.Success {
		r.SuccessCount++
	} else {
		r.FailureCount++
	}
}
