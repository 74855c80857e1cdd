package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SMS delivery modes. In simulate mode codes are logged instead of sent and
// echoed back in the OTP request response.
const (
	SMSModeSNS      = "sns"
	SMSModeSimulate = "simulate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	AuditBucket    string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SNSRegion string
	SMSMode   string

	StartingBalance   int64 // minor units credited at registration
	DefaultDailyLimit int64 // minor units
	Currency          string
	OTPTTL            time.Duration
	OTPMaxAttempts    int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts      string
	Transfers     string
	OTPChallenges string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:      getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			Transfers:     getEnv("DYNAMO_TABLE_TRANSFERS", "transfers"),
			OTPChallenges: getEnv("DYNAMO_TABLE_OTP_CHALLENGES", "otp_challenges"),
		},
		AuditBucket: getEnv("S3_AUDIT_BUCKET", "wallet-audit"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),
		SMSMode:   getEnv("SMS_MODE", SMSModeSimulate),

		StartingBalance:   getEnvInt64("STARTING_BALANCE", 1000),
		DefaultDailyLimit: getEnvInt64("DEFAULT_DAILY_LIMIT", 5000),
		Currency:          getEnv("CURRENCY", "USD"),
		OTPTTL:            time.Duration(getEnvInt("OTP_TTL_SECONDS", 300)) * time.Second,
		OTPMaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 3),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
