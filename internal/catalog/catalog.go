// Package catalog provides the in-memory exercise catalog loaded from YAML.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type entry struct {
	Slug      string  `yaml:"slug"`
	Title     string  `yaml:"title"`
	BodyPart  string  `yaml:"body_part"`
	Pattern   string  `yaml:"pattern"`
	Equipment string  `yaml:"equipment"`
	Compound  bool    `yaml:"compound"`
	MET       float64 `yaml:"met"`
	MediaURL  string  `yaml:"media_url"`
}

type document struct {
	Exercises []entry `yaml:"exercises"`
}

// Catalog is a concurrency-safe exercise list. The zero value is empty.
type Catalog struct {
	mu        sync.RWMutex
	exercises []coach.Exercise
}

// Compile-time check: *Catalog can back the routine generator.
var _ coach.Catalog = (*Catalog)(nil)

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a catalog document. Slugs must be unique and every entry
// needs a title, body part and equipment tag.
func Parse(r io.Reader) (*Catalog, error) {
	exs, err := decode(r)
	if err != nil {
		return nil, err
	}
	return &Catalog{exercises: exs}, nil
}

func decode(r io.Reader) ([]coach.Exercise, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Exercises))
	exs := make([]coach.Exercise, 0, len(doc.Exercises))
	for i, e := range doc.Exercises {
		if e.Title == "" || e.BodyPart == "" || e.Equipment == "" {
			return nil, fmt.Errorf("catalog entry %d: title, body_part and equipment are required", i+1)
		}
		slug := e.Slug
		if slug == "" {
			slug = slugify(e.Title)
		}
		if seen[slug] {
			return nil, fmt.Errorf("catalog entry %d: duplicate slug %q", i+1, slug)
		}
		seen[slug] = true

		pattern := e.Pattern
		if pattern == "" {
			pattern = coach.PatternIsolation
		}
		exs = append(exs, coach.Exercise{
			ID:        int64(i + 1),
			Slug:      slug,
			Title:     e.Title,
			BodyPart:  strings.ToLower(e.BodyPart),
			Pattern:   strings.ToLower(pattern),
			Equipment: strings.ToLower(e.Equipment),
			Compound:  e.Compound,
			MET:       e.MET,
			MediaURL:  e.MediaURL,
		})
	}
	return exs, nil
}

// Find returns matching exercises, compound first, then by title.
func (c *Catalog) Find(_ context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return coach.FilterExercises(c.exercises, q), nil
}

// GetExerciseByName looks an exercise up by slug or case-insensitive title.
func (c *Catalog) GetExerciseByName(_ context.Context, name string) (*coach.Exercise, error) {
	name = strings.TrimSpace(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.exercises {
		if e.Slug == name || strings.EqualFold(e.Title, name) {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("exercise %q: %w", name, models.ErrNotFound)
}

// All returns a copy of every exercise in file order.
func (c *Catalog) All() []coach.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]coach.Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.exercises)
}

// Reload replaces the contents from path. On error the current contents are kept.
func (c *Catalog) Reload(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	exs, err := decode(f)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.exercises = exs
	c.mu.Unlock()
	return nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
