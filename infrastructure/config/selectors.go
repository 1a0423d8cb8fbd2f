package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Viewport is the browser window size used for extraction
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// StepTimeouts bounds each step of the extraction protocol
type StepTimeouts struct {
	Navigation   time.Duration `yaml:"navigation"`
	StartControl time.Duration `yaml:"start_control"`
	Loading      time.Duration `yaml:"loading"`
	Title        time.Duration `yaml:"title"`
}

// SelectorProfile describes how to read the daily game from the source page.
// Selector lists are ordered; the first one that matches wins.
type SelectorProfile struct {
	SourceURL        string       `yaml:"source_url"`
	Viewport         Viewport     `yaml:"viewport"`
	StartControl     string       `yaml:"start_control"`
	LoadingIndicator string       `yaml:"loading_indicator"`
	LoadingSentinel  string       `yaml:"loading_sentinel"`
	TitleSelectors   []string     `yaml:"title_selectors"`
	AnswerSelectors  []string     `yaml:"answer_selectors"`
	Timeouts         StepTimeouts `yaml:"timeouts"`
}

// DefaultSelectorProfile returns the profile for the live site as last verified
func DefaultSelectorProfile() SelectorProfile {
	return SelectorProfile{
		SourceURL:        "https://dailytens.com",
		Viewport:         Viewport{Width: 1280, Height: 800},
		StartControl:     ".playButton",
		LoadingIndicator: ".test-text",
		LoadingSentinel:  "loading font...",
		TitleSelectors: []string{
			".Title",
			".title-container div",
			`div[class*="title"]`,
			`div[class*="Title"]`,
		},
		AnswerSelectors: []string{
			".flip-card-back .texty",
			".flip-card .texty",
			`[class*="flip-card"] [class*="texty"]`,
		},
		Timeouts: StepTimeouts{
			Navigation:   30 * time.Second,
			StartControl: 10 * time.Second,
			Loading:      10 * time.Second,
			Title:        5 * time.Second,
		},
	}
}

// Validate checks the profile is usable
func (p SelectorProfile) Validate() error {
	if p.SourceURL == "" {
		return fmt.Errorf("source_url is required")
	}
	if p.StartControl == "" {
		return fmt.Errorf("start_control is required")
	}
	if len(p.TitleSelectors) == 0 {
		return fmt.Errorf("at least one title selector is required")
	}
	if len(p.AnswerSelectors) == 0 {
		return fmt.Errorf("at least one answer selector is required")
	}
	if p.Viewport.Width <= 0 || p.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive")
	}
	return p.Timeouts.validate()
}

// validate rejects unbounded steps; Playwright treats a zero timeout as none.
func (t StepTimeouts) validate() error {
	for _, step := range []struct {
		name string
		d    time.Duration
	}{
		{"navigation", t.Navigation},
		{"start_control", t.StartControl},
		{"loading", t.Loading},
		{"title", t.Title},
	} {
		if step.d <= 0 {
			return fmt.Errorf("timeouts.%s must be positive, got %s", step.name, step.d)
		}
	}
	return nil
}

// LoadSelectorProfile reads a YAML profile. Fields the file leaves out keep
// their default values; an empty path yields the defaults.
func LoadSelectorProfile(path string) (SelectorProfile, error) {
	profile := DefaultSelectorProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorProfile{}, fmt.Errorf("failed to read selector file: %w", err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return SelectorProfile{}, fmt.Errorf("failed to parse selector file: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return SelectorProfile{}, fmt.Errorf("invalid selector file %s: %w", path, err)
	}

	return profile, nil
}

// ProfileStore holds the current selector profile. Readers take a snapshot;
// a reload swaps the whole profile at once.
type ProfileStore struct {
	current atomic.Pointer[SelectorProfile]
}

// NewProfileStore creates a store holding initial
func NewProfileStore(initial SelectorProfile) *ProfileStore {
	s := &ProfileStore{}
	s.Set(initial)
	return s
}

// Current returns a snapshot of the active profile
func (s *ProfileStore) Current() SelectorProfile {
	p := s.current.Load()
	out := *p
	out.TitleSelectors = append([]string(nil), p.TitleSelectors...)
	out.AnswerSelectors = append([]string(nil), p.AnswerSelectors...)
	return out
}

// Set replaces the active profile
func (s *ProfileStore) Set(p SelectorProfile) {
	s.current.Store(&p)
}
