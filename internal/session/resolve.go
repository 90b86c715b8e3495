package session

import (
	"errors"

	"github.com/matheus3301/mqchat/internal/config"
)

// ErrNoIdentity is returned when neither a flag, MQCHAT_IDENTITY nor the
// config file names the local participant.
var ErrNoIdentity = errors.New("no identity: pass --identity, set MQCHAT_IDENTITY or add identity to config.toml")

// Resolve determines the local identity using precedence:
// 1. flagOverride (--identity flag)
// 2. cfg.Identity (MQCHAT_IDENTITY, then config.toml)
// The result is validated.
func Resolve(flagOverride string, cfg *config.Config) (string, error) {
	identity := flagOverride
	if identity == "" && cfg != nil {
		identity = cfg.Identity
	}
	if identity == "" {
		return "", ErrNoIdentity
	}
	if err := ValidateIdentity(identity); err != nil {
		return "", err
	}
	return identity, nil
}
