package domain

// OTPChallenge is a short-lived transfer-authorization code.
// PK: phone, SK: issued_at (TimeSortLayout, so the newest challenge sorts last).
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; challenges live 300s.
type OTPChallenge struct {
	Phone     string `json:"phone" dynamodbav:"phone"`
	IssuedAt  string `json:"issued_at" dynamodbav:"issued_at"`
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"-" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}

type OTPRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPVerifyBody struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}
