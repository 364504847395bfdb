package param

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainParameter separates parameter hashes from other content hashes.
// Version suffix enables future algorithm migration.
const DomainParameter = "tinkerharness/param/v1"

// HashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// hashCanonical hashes a parameter's canonical form.
func hashCanonical(canon string) string {
	return HashWithDomain(DomainParameter, []byte(canon))
}
