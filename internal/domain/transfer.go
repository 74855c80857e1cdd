package domain

import "time"

type TransferStatus string

// Pending and Failed are reserved for asynchronous settlement; the synchronous
// pipeline only ever writes Completed entries.
const (
	TransferPending   TransferStatus = "Pending"
	TransferCompleted TransferStatus = "Completed"
	TransferFailed    TransferStatus = "Failed"
)

// Transfer is a ledger entry. Entries are written exactly once, atomically with
// the balance mutation, and are immutable afterwards.
type Transfer struct {
	TransferID  string         `json:"id" dynamodbav:"transfer_id"`
	SenderID    string         `json:"sender_id" dynamodbav:"sender_id"`
	ReceiverID  string         `json:"receiver_id" dynamodbav:"receiver_id"`
	Amount      int64          `json:"amount" dynamodbav:"amount"`
	Currency    string         `json:"currency" dynamodbav:"currency"`
	Status      TransferStatus `json:"status" dynamodbav:"status"`
	Description string         `json:"description" dynamodbav:"description"`
	RiskScore   int            `json:"risk_score" dynamodbav:"risk_score"`
	IsFlagged   bool           `json:"is_flagged" dynamodbav:"is_flagged"`
	// FlagStatus mirrors IsFlagged as a string so flagged entries can be
	// queried through a GSI (DynamoDB cannot index a BOOL attribute).
	FlagStatus string    `json:"-" dynamodbav:"flag_status"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

const (
	FlagStatusFlagged = "flagged"
	FlagStatusClear   = "clear"
)

type TransferRequest struct {
	SenderID           string `json:"sender_id" validate:"required"`
	ReceiverIdentifier string `json:"receiver_identifier" validate:"required"`
	Amount             int64  `json:"amount" validate:"required,gt=0"`
	Description        string `json:"description" validate:"max=200"`
}
