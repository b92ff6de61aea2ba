// Package utils contains small helpers that do not belong to a single
// layer, such as booking reference generation.
package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingReference produces the unique, human-presentable code
// stored on every booking: "FEST" followed by a yyMMddHHmmss timestamp
// and six random characters from A-Z0-9.  The timestamp prefix keeps
// references roughly sortable; the random suffix makes collisions
// within one second vanishingly unlikely, and the unique index on
// bookings.reference catches the remainder.
func NewBookingReference(now time.Time) (string, error) {
	suffix, err := randomString(6)
	if err != nil {
		return "", fmt.Errorf("generate reference suffix: %w", err)
	}
	return "FEST" + now.UTC().Format("060102150405") + suffix, nil
}

// randomString returns n characters drawn from referenceAlphabet using
// crypto/rand.
func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = referenceAlphabet[int(v)%len(referenceAlphabet)]
	}
	return string(out), nil
}
