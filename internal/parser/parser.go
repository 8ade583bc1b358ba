package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Each field of a note starts with one of these prefixes and runs until the
// next prefix, a "---" separator or the end of the file.
var prefixes = []struct {
	prefix string
	field  func(n *domain.Note) *string
}{
	{"Q:", func(n *domain.Note) *string { return &n.Question }},
	{"A:", func(n *domain.Note) *string { return &n.Answer }},
	{"C:", func(n *domain.Note) *string { return &n.Context }},
}

const separator = "---"

// ParseFile reads a file from the given path and extracts all notes.
func ParseFile(path string) ([]domain.Note, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

type noteBuilder struct {
	notes   []domain.Note
	current domain.Note
	field   *string // nil while seeking the next question
	block   []string
}

// flushField stores the accumulated lines into the field being read.
func (b *noteBuilder) flushField() {
	if b.field != nil && len(b.block) > 0 {
		*b.field = strings.TrimRight(strings.Join(b.block, "\n"), "\n ")
	}
	b.block = nil
}

// finishNote closes the current note. Notes without a question are dropped.
func (b *noteBuilder) finishNote() {
	b.flushField()
	if b.current.Question != "" {
		b.notes = append(b.notes, b.current)
	}
	b.current = domain.Note{}
	b.field = nil
}

func (b *noteBuilder) line(line string) {
	if line == separator {
		b.finishNote()
		return
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(line, p.prefix) {
			continue
		}
		if p.prefix == "Q:" && b.field != nil {
			// A new question always starts a new note.
			b.finishNote()
		}
		b.flushField()
		b.field = p.field(&b.current)
		b.block = append(b.block, strings.TrimPrefix(line[len(p.prefix):], " "))
		return
	}

	if b.field != nil {
		b.block = append(b.block, line)
	}
}

// Parse reads from an io.Reader and extracts all notes.
func Parse(r io.Reader) ([]domain.Note, error) {
	scanner := bufio.NewScanner(r)
	var b noteBuilder
	for scanner.Scan() {
		b.line(scanner.Text())
	}
	b.finishNote()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.notes, nil
}
