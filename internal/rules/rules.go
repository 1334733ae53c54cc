// Package rules holds the ordered table of deterministic replies that bypass
// text generation.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"text/template"
)

var (
	ErrEmptyRule     = errors.New("rule needs at least one phrase and a reply")
	ErrDuplicateRule = errors.New("duplicate rule name")
)

// Rule pairs a phrase predicate with a reply template. A rule matches when
// any phrase is a substring of the lowercased message.
type Rule struct {
	Name      string   `yaml:"name"`
	Phrases   []string `yaml:"phrases"`
	Reply     string   `yaml:"reply"`
	OwnerOnly bool     `yaml:"owner_only,omitempty"`
}

// Data is what reply templates can reference.
type Data struct {
	Name   string
	Handle string
	Owner  bool
}

// Match is the outcome of a successful rule evaluation.
type Match struct {
	Rule  string
	Reply string
}

type compiledRule struct {
	name      string
	phrases   []string
	tmpl      *template.Template
	ownerOnly bool
}

func (r compiledRule) matches(lower string) bool {
	for _, p := range r.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Table is an immutable compiled rule list.
type Table struct {
	rules []compiledRule
}

// Compile validates rules and parses their templates, preserving order.
func Compile(rules []Rule) (*Table, error) {
	seen := make(map[string]bool, len(rules))
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = fmt.Sprintf("rule_%d", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, name)
		}
		seen[name] = true

		phrases := make([]string, 0, len(r.Phrases))
		for _, p := range r.Phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				phrases = append(phrases, p)
			}
		}
		if len(phrases) == 0 || strings.TrimSpace(r.Reply) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRule, name)
		}

		tmpl, err := template.New(name).Option("missingkey=error").Parse(r.Reply)
		if err != nil {
			return nil, fmt.Errorf("parse reply for %s: %w", name, err)
		}
		out = append(out, compiledRule{
			name:      name,
			phrases:   phrases,
			tmpl:      tmpl,
			ownerOnly: r.OwnerOnly,
		})
	}
	return &Table{rules: out}, nil
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Match evaluates rules top to bottom and renders the first match. Owner-only
// rules are skipped unless data.Owner is set.
func (t *Table) Match(text string, data Data) (Match, bool, error) {
	if t == nil {
		return Match{}, false, nil
	}
	lower := strings.ToLower(text)
	for _, r := range t.rules {
		if r.ownerOnly && !data.Owner {
			continue
		}
		if !r.matches(lower) {
			continue
		}
		var b bytes.Buffer
		if err := r.tmpl.Execute(&b, data); err != nil {
			return Match{}, false, fmt.Errorf("render rule %s: %w", r.name, err)
		}
		return Match{Rule: r.name, Reply: b.String()}, true, nil
	}
	return Match{}, false, nil
}

// Engine serves the active table and lets it be swapped at runtime.
type Engine struct {
	table atomic.Pointer[Table]
}

func NewEngine(t *Table) *Engine {
	e := &Engine{}
	e.Replace(t)
	return e
}

func (e *Engine) Replace(t *Table) {
	if t == nil {
		t = &Table{}
	}
	e.table.Store(t)
}

func (e *Engine) Table() *Table { return e.table.Load() }

func (e *Engine) Match(text string, data Data) (Match, bool, error) {
	return e.table.Load().Match(text, data)
}
