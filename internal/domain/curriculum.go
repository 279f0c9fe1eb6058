package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Question is one curriculum item served by the Knowledge Service.
type Question struct {
	Topic       string `json:"topic"`
	Text        string `json:"text"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// CurriculumKey identifies a subject/level pair. Membership checks are
// exact-string and case-sensitive, matching the curriculum source of truth.
type CurriculumKey struct {
	Subject string
	Level   string
}

// String renders the key in the wire form learners type ("Math:Beginner").
func (k CurriculumKey) String() string {
	return k.Subject + ":" + k.Level
}

// ParseCurriculumKey parses "Subject:Level" text. The input must contain
// exactly one colon with non-empty halves.
func ParseCurriculumKey(text string) (CurriculumKey, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return CurriculumKey{}, fmt.Errorf("expected Subject:Level, got %q", text)
	}
	subject := strings.TrimSpace(parts[0])
	level := strings.TrimSpace(parts[1])
	if subject == "" || level == "" {
		return CurriculumKey{}, fmt.Errorf("expected Subject:Level, got %q", text)
	}
	return CurriculumKey{Subject: subject, Level: level}, nil
}

// Catalog is the authoritative set of subject/level pairs the Knowledge
// Service can serve. Supplied to the engine at construction time.
type Catalog struct {
	pairs map[CurriculumKey]struct{}
}

// NewCatalog builds a catalog from the given pairs.
func NewCatalog(keys ...CurriculumKey) *Catalog {
	c := &Catalog{pairs: make(map[CurriculumKey]struct{}, len(keys))}
	for _, k := range keys {
		c.pairs[k] = struct{}{}
	}
	return c
}

// Contains reports catalog membership for the pair.
func (c *Catalog) Contains(key CurriculumKey) bool {
	_, ok := c.pairs[key]
	return ok
}

// Subjects returns the distinct subjects in stable sorted order, for menus
// and validation error messages.
func (c *Catalog) Subjects() []string {
	seen := make(map[string]struct{})
	var subjects []string
	for k := range c.pairs {
		if _, ok := seen[k.Subject]; ok {
			continue
		}
		seen[k.Subject] = struct{}{}
		subjects = append(subjects, k.Subject)
	}
	sort.Strings(subjects)
	return subjects
}

// LevelsFor returns the levels available for a subject in sorted order.
func (c *Catalog) LevelsFor(subject string) []string {
	var levels []string
	for k := range c.pairs {
		if k.Subject == subject {
			levels = append(levels, k.Level)
		}
	}
	sort.Strings(levels)
	return levels
}

// Len returns the number of subject/level pairs.
func (c *Catalog) Len() int {
	return len(c.pairs)
}
