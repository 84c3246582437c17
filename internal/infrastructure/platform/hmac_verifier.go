package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/obralink/backend/internal/domain/integration"
	"github.com/obralink/backend/internal/infrastructure/config"
)

const signaturePrefix = "sha256="

// HMACVerifier checks HMAC-SHA256 webhook signatures with per-platform secrets
type HMACVerifier struct {
	secrets map[integration.PlatformCode][]byte
}

// NewHMACVerifier creates a verifier from the platform configuration.
// Platforms without a webhook secret reject every webhook.
func NewHMACVerifier(platforms map[string]config.PlatformConfig) *HMACVerifier {
	secrets := make(map[integration.PlatformCode][]byte, len(platforms))
	for raw, cfg := range platforms {
		if cfg.WebhookSecret == "" {
			continue
		}
		code, err := integration.ParsePlatformCode(raw)
		if err != nil {
			continue
		}
		secrets[code] = []byte(cfg.WebhookSecret)
	}
	return &HMACVerifier{secrets: secrets}
}

// Sign returns the hex HMAC-SHA256 of body under the platform secret
func (v *HMACVerifier) Sign(platform integration.PlatformCode, body []byte) (string, error) {
	secret, ok := v.secrets[platform]
	if !ok {
		return "", fmt.Errorf("%w: no webhook secret for %s", integration.ErrPlatformNotConfigured, platform)
	}
	return computeSignature(secret, body), nil
}

// Verify checks the signature header value, given as "sha256=<hex>" or bare hex
func (v *HMACVerifier) Verify(platform integration.PlatformCode, body []byte, signature string) error {
	secret, ok := v.secrets[platform]
	if !ok {
		return fmt.Errorf("%w: no webhook secret for %s", integration.ErrWebhookSignature, platform)
	}

	signature = strings.TrimSpace(signature)
	if len(signature) >= len(signaturePrefix) && strings.EqualFold(signature[:len(signaturePrefix)], signaturePrefix) {
		signature = signature[len(signaturePrefix):]
	}
	given, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil || len(given) != sha256.Size {
		return integration.ErrWebhookSignature
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return integration.ErrWebhookSignature
	}
	return nil
}

func computeSignature(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ integration.WebhookVerifier = (*HMACVerifier)(nil)
