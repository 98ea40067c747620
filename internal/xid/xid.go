// Package xid generates request identifiers for log correlation.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// New returns "<prefix>-<unix millis, base36>-<12 hex chars>". When the
// random source fails the suffix is derived from the clock, so IDs stay
// unique per process but become guessable.
func New(prefix string) string {
	now := time.Now()
	var b strings.Builder
	b.Grow(len(prefix) + 24)
	b.WriteString(prefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	b.WriteByte('-')

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		b.WriteString(strconv.FormatInt(now.UnixNano()%1e12, 16))
		return b.String()
	}
	b.WriteString(hex.EncodeToString(buf))
	return b.String()
}
