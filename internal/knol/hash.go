package knol

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// normalizePart lowercases a field, normalizes line endings and collapses
// runs of spaces and tabs inside each line.
func normalizePart(part string) string {
	part = strings.ReplaceAll(strings.ToLower(part), "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(part), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// Normalize joins the note's cleaned fields with newlines so that the
// boundary between question, answer and context is preserved.
func Normalize(note domain.Note) string {
	return strings.Join([]string{
		normalizePart(note.Question),
		normalizePart(note.Answer),
		normalizePart(note.Context),
	}, "\n")
}

// Hash returns the SHA-256 of the normalized note as a hex string. Two notes
// with the same hash are the same card.
func Hash(note domain.Note) string {
	sum := sha256.Sum256([]byte(Normalize(note)))
	return hex.EncodeToString(sum[:])
}
