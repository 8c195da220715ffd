package models

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Term is the season part of a session label.
type Term string

// Term values.
const (
	TermSpring Term = "Sp"
	TermSummer Term = "Su"
	TermFall   Term = "Fa"
)

var sessionPattern = regexp.MustCompile(`^(Fa|Sp|Su) (\d{2})$`)

// Session is a parsed session label such as "Fa 21".
type Session struct {
	Term Term
	Year int
}

// ParseSession parses a label of the form "<Term> <YY>".
func ParseSession(label string) (Session, error) {
	match := sessionPattern.FindStringSubmatch(label)
	if match == nil {
		return Session{}, fmt.Errorf("invalid session label %q", label)
	}
	year, _ := strconv.Atoi(match[2])
	return Session{Term: Term(match[1]), Year: 2000 + year}, nil
}

// IsSessionLabel reports whether label names a known session.
func IsSessionLabel(label string) bool {
	return sessionPattern.MatchString(label)
}

// String renders the session label.
func (s Session) String() string {
	return fmt.Sprintf("%s %02d", s.Term, s.Year%100)
}

// IsSummer reports whether the session is a summer session.
func (s Session) IsSummer() bool {
	return s.Term == TermSummer
}

func (s Session) rank() int {
	order := 0
	switch s.Term {
	case TermSpring:
		order = 1
	case TermSummer:
		order = 2
	case TermFall:
		order = 3
	}
	return s.Year*10 + order
}

// Before reports whether s happens before other.
func (s Session) Before(other Session) bool {
	return s.rank() < other.rank()
}

// SortSessionLabels sorts labels chronologically. Unknown labels sort first, lexically.
func SortSessionLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		a, errA := ParseSession(labels[i])
		b, errB := ParseSession(labels[j])
		switch {
		case errA != nil && errB != nil:
			return labels[i] < labels[j]
		case errA != nil:
			return true
		case errB != nil:
			return false
		}
		return a.Before(b)
	})
}
