package tables

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/net/html"

	"github.com/jwulff/commutes/internal/directions"
)

// FingerprintSeparator joins instructions before hashing.
const FingerprintSeparator = " > "

// StripHTML returns the text content of an instruction with tags removed
// and entities decoded. Text from adjacent elements is concatenated as is.
func StripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Fingerprint hashes an ordered list of plain-text instructions. Only the
// text and its order matter.
func Fingerprint(instructions []string) string {
	sum := md5.Sum([]byte(strings.Join(instructions, FingerprintSeparator)))
	return hex.EncodeToString(sum[:])
}

// RouteFingerprint fingerprints every step instruction across all legs.
func RouteFingerprint(r directions.Route) string {
	var instructions []string
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			instructions = append(instructions, StripHTML(step.HTMLInstructions))
		}
	}
	return Fingerprint(instructions)
}
