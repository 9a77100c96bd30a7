package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// webhookSigPrefix versions the notification signature so receivers can tell
// schemes apart if the hash ever changes.
const webhookSigPrefix = "sha256="

// HMACSignatureService implements ports.SignatureService for notification
// webhooks. Signatures look like "sha256=<hex>".
type HMACSignatureService struct{}

func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign returns the versioned HMAC-SHA256 of payload under secretKey.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	return webhookSigPrefix + hex.EncodeToString(macOf(secretKey, payload))
}

// Verify accepts a versioned signature, or a bare hex digest from older receivers.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	got, err := hex.DecodeString(strings.TrimPrefix(signature, webhookSigPrefix))
	if err != nil {
		return false
	}
	return hmac.Equal(macOf(secretKey, payload), got)
}

func macOf(secretKey, payload string) []byte {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
