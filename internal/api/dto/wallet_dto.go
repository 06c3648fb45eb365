package dto

import "time"

// TransferRequest payload for POST /wallet/transfers.
type TransferRequest struct {
	ToActorID string `json:"to_actor_id"`
	Amount    int64  `json:"amount"`
}

// SpendRequest payload for POST /wallet/spend.
type SpendRequest struct {
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason"`
	ReferenceID string `json:"reference_id"`
}

// SpendResponse describes a committed purchase.
type SpendResponse struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
	Amount        int64  `json:"amount"`
	Balance       int64  `json:"balance"`
}

// GrantRequest payload for POST /admin/grants.
type GrantRequest struct {
	ToActorID string `json:"to_actor_id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

// BalanceResponse is the authoritative balance read back from the ledger.
type BalanceResponse struct {
	ActorID string `json:"actor_id"`
	Balance int64  `json:"balance"`
}

// TransferResponse describes a committed transfer or grant.
type TransferResponse struct {
	TransactionID string `json:"transaction_id"`
	ToActorID     string `json:"to_actor_id"`
	Amount        int64  `json:"amount"`
	Balance       int64  `json:"balance"`
}

// TransactionResponse is one ledger line.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
