package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is a wallet holder. Balance, DailyLimit and DailyUsage are integer
// minor currency units. Version guards every compare-and-save write: a save
// whose expected version no longer matches fails with ErrConflict.
type Account struct {
	AccountID     string     `json:"id" dynamodbav:"account_id"`
	WalletID      string     `json:"wallet_id" dynamodbav:"wallet_id"`
	Email         string     `json:"email" dynamodbav:"email"`
	Phone         *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	Role          string     `json:"role" dynamodbav:"role"`
	FirstName     string     `json:"first_name" dynamodbav:"first_name"`
	LastName      string     `json:"last_name" dynamodbav:"last_name"`
	Balance       int64      `json:"balance" dynamodbav:"balance"`
	Currency      string     `json:"currency" dynamodbav:"currency"`
	DailyLimit    int64      `json:"daily_limit" dynamodbav:"daily_limit"`
	DailyUsage    int64      `json:"daily_usage" dynamodbav:"daily_usage"`
	LastResetDate time.Time  `json:"last_reset_date" dynamodbav:"last_reset_date"`
	IsFrozen      bool       `json:"is_frozen" dynamodbav:"is_frozen"`
	OTPAttempts   int        `json:"-" dynamodbav:"otp_attempts"`
	Version       int64      `json:"-" dynamodbav:"version"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateAccountRequest struct {
	FirstName string  `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string  `json:"last_name" validate:"required,min=2,max=50"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
}

type UpdateAccountRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
