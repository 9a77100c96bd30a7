package service

import (
	"crypto/hmac"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Blake2bRecordSigner implements domain.RecordSigner with keyed BLAKE2b-512.
type Blake2bRecordSigner struct {
	key []byte
}

// NewBlake2bRecordSigner creates a signer. The key must be 32 to 64 bytes.
func NewBlake2bRecordSigner(key []byte) (*Blake2bRecordSigner, error) {
	if len(key) < 32 || len(key) > blake2b.Size {
		return nil, fmt.Errorf("record signer key must be 32-%d bytes, got %d", blake2b.Size, len(key))
	}
	return &Blake2bRecordSigner{key: append([]byte(nil), key...)}, nil
}

// Sign returns the 64-byte keyed digest of canonical.
func (s *Blake2bRecordSigner) Sign(canonical []byte) []byte {
	h, err := blake2b.New512(s.key)
	if err != nil {
		// key length is checked in the constructor
		panic(err)
	}
	h.Write(canonical)
	return h.Sum(nil)
}

// Verify uses constant-time comparison.
func (s *Blake2bRecordSigner) Verify(signature, canonical []byte) bool {
	return hmac.Equal(signature, s.Sign(canonical))
}
