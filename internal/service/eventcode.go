package service

import (
	"crypto/rand"
	"io"
	"strings"
	"time"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeGenerator builds event codes of the form EVT-<MON><YEAR>-<RAND3>,
// e.g. EVT-MAR2025-7QZ.  The suffix is drawn from [0-9A-Z].
type CodeGenerator struct {
	rand io.Reader
}

// NewCodeGenerator returns a generator backed by crypto/rand.
func NewCodeGenerator() *CodeGenerator { return &CodeGenerator{rand: rand.Reader} }

// Generate returns a fresh code for an event held on date.
func (g *CodeGenerator) Generate(date time.Time) (string, error) {
	suffix, err := g.suffix(3)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("EVT-")
	b.WriteString(strings.ToUpper(date.Format("Jan")))
	b.WriteString(date.Format("2006"))
	b.WriteByte('-')
	b.WriteString(suffix)
	return b.String(), nil
}

func (g *CodeGenerator) suffix(n int) (string, error) {
	buf := make([]byte, 1)
	out := make([]byte, n)
	// Rejection sampling keeps the distribution uniform over the alphabet.
	limit := byte(256 - 256%len(codeAlphabet))
	for i := 0; i < n; {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", err
		}
		if buf[0] >= limit {
			continue
		}
		out[i] = codeAlphabet[int(buf[0])%len(codeAlphabet)]
		i++
	}
	return string(out), nil
}
