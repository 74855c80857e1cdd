package http

import (
	"github.com/go-wallet-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-wallet-api/internal/infrastructure/jwt"
	s3infra "github.com/go-wallet-api/internal/infrastructure/s3"
	"github.com/go-wallet-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo   *dynamo.AccountRepo
	TransferRepo  *dynamo.TransferRepo
	ChallengeRepo *dynamo.ChallengeRepo
	LedgerWriter  *dynamo.LedgerWriter
	AuditStore    *s3infra.Store
	SMSSender     sns.SMSSender
	JWTProvider   *jwtinfra.Provider
}
