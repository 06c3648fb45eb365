package dto

// SettleCallRequest payload.
type SettleCallRequest struct {
	DurationSeconds int64 `json:"duration_seconds"`
}

// CallSettlementResponse describes a charged call.
type CallSettlementResponse struct {
	CallID          string `json:"call_id"`
	DurationSeconds int64  `json:"duration_seconds"`
	Cost            int64  `json:"cost"`
	Balance         int64  `json:"balance"`
}

// CallQuoteResponse prices a call without charging it.
type CallQuoteResponse struct {
	CallID          string `json:"call_id"`
	DurationSeconds int64  `json:"duration_seconds"`
	RatePerMinute   int64  `json:"rate_per_minute"`
	Cost            int64  `json:"cost"`
}
