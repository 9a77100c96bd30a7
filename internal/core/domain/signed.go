package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"intro-auction/pkg/money"

	"github.com/google/uuid"
)

// ErrIntegrity is returned when a stored signature does not match the record content.
var ErrIntegrity = errors.New("record signature mismatch")

// RecordSigner signs and verifies canonical record encodings.
type RecordSigner interface {
	Sign(canonical []byte) []byte
	Verify(signature, canonical []byte) bool
}

// SignedRecord is implemented by every financially significant entity.
type SignedRecord interface {
	// CanonicalBytes is exactly what gets signed. Field order is fixed.
	CanonicalBytes() []byte
	SetSignature(sig []byte)
	RecordSignature() []byte
	// RecordRef identifies the record in integrity reports, e.g. "conversation:<id>".
	RecordRef() string
}

// Seal signs rec in place.
func Seal(rec SignedRecord, signer RecordSigner) {
	rec.SetSignature(signer.Sign(rec.CanonicalBytes()))
}

// VerifyRecord returns ErrIntegrity when rec's signature is missing or wrong.
func VerifyRecord(rec SignedRecord, signer RecordSigner) error {
	sig := rec.RecordSignature()
	if len(sig) == 0 || !signer.Verify(sig, rec.CanonicalBytes()) {
		return ErrIntegrity
	}
	return nil
}

// canonical joins fields with '|'. Callers only pass values rendered by the
// helpers below, none of which can contain the separator except free text,
// which is escaped.
type canonical struct {
	parts []string
}

func newCanonical(kind string) *canonical {
	return &canonical{parts: []string{kind}}
}

func (c *canonical) id(v uuid.UUID) *canonical {
	c.parts = append(c.parts, v.String())
	return c
}

func (c *canonical) optID(v *uuid.UUID) *canonical {
	if v == nil {
		c.parts = append(c.parts, "")
		return c
	}
	return c.id(*v)
}

func (c *canonical) amount(m money.Money) *canonical {
	c.parts = append(c.parts, m.String())
	return c
}

func (c *canonical) at(t time.Time) *canonical {
	c.parts = append(c.parts, CanonicalTime(t))
	return c
}

func (c *canonical) uint(v uint64) *canonical {
	c.parts = append(c.parts, strconv.FormatUint(v, 10))
	return c
}

func (c *canonical) text(s string) *canonical {
	s = strings.ReplaceAll(s, `\`, `\\`)
	c.parts = append(c.parts, strings.ReplaceAll(s, "|", `\|`))
	return c
}

func (c *canonical) bytes() []byte {
	return []byte(strings.Join(c.parts, "|"))
}

// CanonicalTime renders t in UTC at microsecond precision, the resolution the
// store keeps, so a record signs identically before and after a round trip.
func CanonicalTime(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format("2006-01-02T15:04:05.000000Z")
}
