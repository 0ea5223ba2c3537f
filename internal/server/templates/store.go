// Package templates renders prompt templates addressed by category and
// variant. A Store is loaded once and never changes afterwards.
package templates

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// Instructions is the category holding the wrappers sent to the model.
const Instructions = "instructions"

// Instruction variants used by the pipelines.
const (
	PolishEmail      = "polish_email"
	TaskBreakdown    = "task_breakdown"
	Schedule         = "schedule"
	ProductivityTips = "productivity_tips"
	ResearchAnswer   = "research_answer"
)

//go:embed default.yaml
var defaultTemplates []byte

// Store is an immutable set of templates.
type Store struct {
	templates map[string]map[string]string
}

// Default returns the built-in templates.
func Default() (*Store, error) {
	return Parse(defaultTemplates)
}

// Load reads templates from a YAML file, or returns the built-in set when
// path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read templates: %v", common.ErrConfiguration, err)
	}
	return Parse(data)
}

// Parse builds a Store from YAML shaped as category -> variant -> text.
func Parse(data []byte) (*Store, error) {
	raw := map[string]map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse templates: %v", common.ErrConfiguration, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no templates defined", common.ErrConfiguration)
	}

	templates := make(map[string]map[string]string, len(raw))
	for category, variants := range raw {
		cp := make(map[string]string, len(variants))
		for variant, text := range variants {
			cp[variant] = text
		}
		templates[category] = cp
	}
	return &Store{templates: templates}, nil
}

// Render fills the (category, variant) template with fields. Every
// {name} placeholder must have a field; substituted values are not scanned
// again. Braces that do not form a placeholder are kept as written.
func (s *Store) Render(category, variant string, fields map[string]string) (string, error) {
	text, ok := s.templates[category][variant]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", common.ErrUnknownTemplate, category, variant)
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] != '{' {
			b.WriteByte(text[i])
			i++
			continue
		}
		end := placeholderEnd(text, i+1)
		if end < 0 {
			b.WriteByte(text[i])
			i++
			continue
		}
		name := text[i+1 : end]
		value, ok := fields[name]
		if !ok {
			return "", fmt.Errorf("%w: %q in %s/%s", common.ErrMissingField, name, category, variant)
		}
		b.WriteString(value)
		i = end + 1
	}

	return b.String(), nil
}

// placeholderEnd returns the index of the closing brace of an identifier
// starting at start, or -1 when text[start:] does not begin with one.
func placeholderEnd(text string, start int) int {
	for j := start; j < len(text); j++ {
		c := text[j]
		switch {
		case c == '}':
			if j == start {
				return -1
			}
			return j
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
		default:
			return -1
		}
	}
	return -1
}

// Placeholders lists the distinct field names a template needs, in order of
// first appearance.
func (s *Store) Placeholders(category, variant string) ([]string, error) {
	text, ok := s.templates[category][variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", common.ErrUnknownTemplate, category, variant)
	}

	seen := map[string]bool{}
	var names []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := placeholderEnd(text, i+1)
		if end < 0 {
			continue
		}
		name := text[i+1 : end]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i = end
	}
	return names, nil
}

// Categories returns the user-facing categories, sorted. The instructions
// category is internal and left out.
func (s *Store) Categories() []string {
	out := make([]string, 0, len(s.templates))
	for c := range s.templates {
		if c != Instructions {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Variants returns the variants of category, sorted, or nil if unknown.
func (s *Store) Variants(category string) []string {
	variants, ok := s.templates[category]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(variants))
	for v := range variants {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
