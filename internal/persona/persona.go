// Package persona describes the bot's character and assembles the generation
// prompt from it.
package persona

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Persona is one "voice" the bot can speak in.
type Persona struct {
	Name   string
	Voice  string
	Traits []string
}

// DefaultVoices returns the built-in voices for name. The first one is the
// classic voice and the one used when switching is disabled.
func DefaultVoices(name string) []Persona {
	return []Persona{
		{
			Name:  name,
			Voice: "a cute and friendly AI assistant girl",
			Traits: []string{
				"Cute, friendly, and helpful",
				"Sometimes playful and funny",
				`Use expressions like "hehe" when appropriate`,
				"Be caring but keep responses short and sweet",
			},
		},
		{
			Name:  name,
			Voice: "a playful, teasing AI bestie",
			Traits: []string{
				"Witty and a little sassy, never mean",
				"Loves light banter and inside jokes",
				`Use "lol" and "hehe" freely`,
				"Keep it short and fun",
			},
		},
		{
			Name:  name,
			Voice: "a calm and caring AI friend",
			Traits: []string{
				"Gentle, warm and encouraging",
				"Listens first and asks how they are doing",
				"Uses soft emojis like 🌸 and ✨",
				"Keeps replies short and comforting",
			},
		},
	}
}

// Chooser is the source of randomness for voice switching.
type Chooser interface {
	Float64() float64
	IntN(n int) int
}

// NewRandChooser returns a Chooser seeded from the clock.
func NewRandChooser() Chooser {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// Selector picks the active voice per message. With probability p it switches
// to a different voice chosen uniformly; otherwise the current voice stays.
type Selector struct {
	mu      sync.Mutex
	voices  []Persona
	p       float64
	chooser Chooser
	current int
}

func NewSelector(voices []Persona, p float64, chooser Chooser) *Selector {
	if len(voices) == 0 {
		voices = DefaultVoices("Aanyaa")
	}
	if chooser == nil {
		chooser = NewRandChooser()
	}
	return &Selector{voices: voices, p: p, chooser: chooser}
}

// Next returns the voice for the next message.
func (s *Selector) Next() Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.voices) > 1 && s.p > 0 && s.chooser.Float64() < s.p {
		// Skip over the current index so a switch always changes voice.
		next := s.chooser.IntN(len(s.voices) - 1)
		if next >= s.current {
			next++
		}
		s.current = next
	}
	return s.voices[s.current]
}

// Current returns the active voice without advancing.
func (s *Selector) Current() Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices[s.current]
}
