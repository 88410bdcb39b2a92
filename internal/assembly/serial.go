package assembly

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	serialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// one code letter per calendar month, January through December
	monthCodes = "ABCDEFGHIJKL"
)

// GenerateSerial builds a six-character serial number from the production
// date plus two random characters:
//
//	<last digit of year><month letter><2 random><2-digit day>
//
// e.g. a unit produced 2026-09-01 could get "6IAB01". The random middle keeps
// serials distinct for units produced the same day; callers must still check
// uniqueness against stored serials.
func GenerateSerial(when time.Time, rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(6)
	b.WriteByte('0' + byte(when.Year()%10))
	b.WriteByte(monthCodes[int(when.Month())-1])
	for i := 0; i < 2; i++ {
		b.WriteByte(serialAlphabet[rng.Intn(len(serialAlphabet))])
	}
	b.WriteString(fmt.Sprintf("%02d", when.Day()))
	return b.String()
}
