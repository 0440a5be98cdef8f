package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRegistration    = "ordo/registration/v1"
	DomainRegistrationSet = "ordo/registration-set/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RegistrationHash computes the content hash of a single registration.
func RegistrationHash(r Registration) (string, error) {
	if err := r.checkNormalized(); err != nil {
		return "", fmt.Errorf("RegistrationHash: %w", err)
	}
	canonical, err := MarshalCanonical(r.canonical())
	if err != nil {
		return "", fmt.Errorf("RegistrationHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRegistration, canonical), nil
}

// SetDigest computes the digest of an ordered registration list.
// Order is significant: the same registrations in another order produce
// another digest. Every string must already be in NFC.
func SetDigest(regs []Registration) (string, error) {
	list := make([]any, len(regs))
	for i, r := range regs {
		if err := r.checkNormalized(); err != nil {
			return "", fmt.Errorf("SetDigest: %w", err)
		}
		list[i] = r.canonical()
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("SetDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRegistrationSet, canonical), nil
}
