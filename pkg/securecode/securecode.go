package securecode

import (
	"crypto/rand"
	"fmt"
)

// GeneratorInterface defines the contract for mission code generation.
// Idempotency per mission (generate once, return the stored value on
// repeat calls) is the caller's responsibility; this package only
// produces fresh codes.
type GeneratorInterface interface {
	Generate() (string, error)
}

// Codes are read over the phone and typed on small screens, so the
// alphabet drops the lookalike characters O/0, I/1 and lowercase.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength of 6 over a 32-character alphabet gives 2^30 combinations,
// far beyond what can be guessed during a single mission's lifetime.
const CodeLength = 6

// Generator produces short verbal-friendly codes from crypto/rand.
type Generator struct {
	length int
}

func NewGenerator() *Generator {
	return &Generator{length: CodeLength}
}

// Generate returns a fresh random code.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("securecode.Generate: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
