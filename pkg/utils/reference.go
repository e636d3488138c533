package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// refAlphabet excludes characters that are easy to misread (0/O, 1/I/L).
const refAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// GeneratePaymentReference builds a unique payment reference of the form
// EF-<unix-seconds>-<random suffix>. The timestamp keeps references sortable,
// the random suffix makes collisions within a second practically impossible.
func GeneratePaymentReference() string {
	return fmt.Sprintf("EF-%d-%s", time.Now().Unix(), RandomAlphanumeric(6))
}

// RandomAlphanumeric returns n random characters from a human-friendly alphabet.
func RandomAlphanumeric(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// time-derived suffix rather than panicking in a request path.
		return strings.ToUpper(fmt.Sprintf("%x", time.Now().UnixNano())[:n])
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = refAlphabet[int(b)%len(refAlphabet)]
	}
	return string(out)
}
