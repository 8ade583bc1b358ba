package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a card, deck, source or the creation stamp
// does not exist in the store.
var ErrNotFound = errors.New("not found")

// Note is the content of a single question-answer-context entry as it is
// parsed from a markdown source, before it is scheduled as a Card.
type Note struct {
	Question string
	Answer   string
	Context  string
	Hash     string
}

// Bucket is the lifecycle phase a card is in.
// The numeric values are persisted and must not change.
type Bucket int

const (
	New      Bucket = 0
	Learning Bucket = 1
	Review   Bucket = 2
)

// Buckets lists every bucket the store can hold, in scan order.
var Buckets = []Bucket{New, Learning, Review}

var bucketNames = map[Bucket]string{
	New:      "New",
	Learning: "Learning",
	Review:   "Review",
}

// IsValid reports whether b is one of the known buckets.
func (b Bucket) IsValid() bool {
	_, ok := bucketNames[b]
	return ok
}

func (b Bucket) String() string {
	if name, ok := bucketNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Bucket(%d)", int(b))
}

// ParseBucket converts a bucket name (case-insensitive) to a Bucket.
func ParseBucket(s string) (Bucket, error) {
	for b, name := range bucketNames {
		if strings.EqualFold(name, s) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown bucket %q", s)
}

// MemoryState is produced by the scheduler and carried on the card without
// being interpreted by anything else.
type MemoryState struct {
	Stability  float64
	Difficulty float64
}

// Card is a scheduled note inside a deck.
//
// Due depends on the bucket: for New cards it is an ordering position, for
// Review cards it is the absolute day index (days since the collection was
// created) the card becomes due on.
type Card struct {
	ID          int64
	DeckID      int64
	SourceID    *int64
	Hash        string
	Question    string
	Answer      string
	Context     string
	Bucket      Bucket
	Due         int64
	Interval    int64
	MemoryState *MemoryState
}

// Grade is the user's assessment of a recall attempt.
type Grade int

const (
	Again Grade = 1 // Incorrect
	Hard  Grade = 2
	Good  Grade = 3
	Easy  Grade = 4
)

// Grades lists every grade from worst to best.
var Grades = []Grade{Again, Hard, Good, Easy}

var gradeNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// IsValid reports whether g is Again, Hard, Good or Easy.
func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// ParseGrade accepts either a grade name ("good", "Easy") or its number ("3").
func ParseGrade(s string) (Grade, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		g := Grade(n)
		if !g.IsValid() {
			return 0, fmt.Errorf("grade %d out of range 1-4", n)
		}
		return g, nil
	}
	for _, g := range Grades {
		if strings.EqualFold(gradeNames[g], s) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown grade %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("invalid grade %d", int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
