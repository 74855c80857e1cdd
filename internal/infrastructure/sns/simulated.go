package sns

import (
	"context"
	"log/slog"
)

// SimulatedSender is the development fallback: every message is logged instead
// of delivered. It never fails, matching the best-effort contract.
type SimulatedSender struct{}

func NewSimulatedSender() *SimulatedSender { return &SimulatedSender{} }

func (s *SimulatedSender) SendSMS(_ context.Context, to, message string) error {
	slog.Info("SMS simulation", "to", to, "message", message)
	return nil
}
