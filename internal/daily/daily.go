// Package daily implements the Daily Challenge: one answer per UTC day,
// shared by every player, and one settled result per owner and day.
//
// The answer index is keyed with a server-side salt, so knowing the word
// list is not enough to predict tomorrow's word.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"time"
)

// DateKey is the UTC calendar day of t, the form stored in daily_results.date.
func DateKey(t time.Time) string { return t.UTC().Format(time.DateOnly) }

// WordIndex maps the UTC day of t onto [0, n). Any two instants on the same
// day agree; n <= 0 yields 0.
func WordIndex(t time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	_, _ = io.WriteString(mac, DateKey(t))
	return int(binary.BigEndian.Uint64(mac.Sum(nil)) % uint64(n))
}
