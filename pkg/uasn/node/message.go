package node

import (
	"strconv"
	"strings"
)

// Envelope is a parsed wire message: whitespace-separated tokens, first
// token the sender's name, second the verb, the rest verb-specific.
type Envelope struct {
	Sender string
	Verb   string
	Fields []string
}

// Format joins sender, verb and fields into a single wire line.
func Format(sender, verb string, fields ...string) string {
	parts := make([]string, 0, len(fields)+2)
	parts = append(parts, sender, verb)
	parts = append(parts, fields...)
	return strings.Join(parts, " ")
}

// Parse is a total function: it never panics, and returns ok=false for
// anything that is not at least a sender and a verb. Receivers must
// still ignore unknown verbs silently; Parse only rejects messages
// that are not even well-formed envelopes.
func Parse(line string) (Envelope, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Envelope{}, false
	}
	return Envelope{Sender: fields[0], Verb: fields[1], Fields: fields[2:]}, true
}

// FormatFloat renders v with enough precision that ParseFloat recovers
// the exact same float64. Timing coefficients travel as text, so a
// lossy rendering here would corrupt every downstream solve.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat parses a token produced by FormatFloat.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// FormatFloats renders each value with FormatFloat, in order.
func FormatFloats(values ...float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatFloat(v)
	}
	return out
}

// FormatInt renders an integer token in base 10.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// ParseInt parses a base-10 integer token.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
