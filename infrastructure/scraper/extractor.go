// Package scraper reads today's game from the live source page. A browser
// session drives the page through its start sequence; the rendered DOM is
// then read with goquery.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailytens/application/ports"
	"dailytens/domain/game"
	"dailytens/infrastructure/config"

	"go.uber.org/zap"
)

var (
	errNoTitle   = errors.New("no title selector matched")
	errNoAnswers = errors.New("no answer selector matched")
)

// ProfileSource supplies the selector profile for an extraction attempt
type ProfileSource interface {
	Current() config.SelectorProfile
}

// Extractor implements ports.Extractor over a Browser
type Extractor struct {
	browser  Browser
	profiles ProfileSource
	logger   *zap.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(browser Browser, profiles ProfileSource, logger *zap.Logger) *Extractor {
	return &Extractor{
		browser:  browser,
		profiles: profiles,
		logger:   logger,
	}
}

// Extract runs the full protocol once. Every failure, including a panic in
// the browser layer, is reported as ok=false.
func (e *Extractor) Extract(ctx context.Context) (candidate *game.Candidate, ok bool) {
	profile := e.profiles.Current()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Extraction panicked", zap.Any("panic", r))
			candidate, ok = nil, false
		}
	}()

	candidate, err := e.extract(ctx, profile)
	if err != nil {
		e.logger.Warn("Extraction failed",
			zap.String("url", profile.SourceURL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, false
	}

	e.logger.Info("Extraction succeeded",
		zap.String("title", candidate.Title),
		zap.Duration("duration", time.Since(start)),
	)
	return candidate, true
}

func (e *Extractor) extract(ctx context.Context, profile config.SelectorProfile) (*game.Candidate, error) {
	session, err := e.browser.NewSession(ctx, SessionOptions{
		ViewportWidth:  profile.Viewport.Width,
		ViewportHeight: profile.Viewport.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			e.logger.Warn("Failed to close browser session", zap.Error(err))
		}
	}()

	e.logger.Debug("Navigating", zap.String("url", profile.SourceURL))
	if err := session.Navigate(ctx, profile.SourceURL, profile.Timeouts.Navigation); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	e.logger.Debug("Starting game", zap.String("selector", profile.StartControl))
	if err := session.Click(ctx, profile.StartControl, profile.Timeouts.StartControl); err != nil {
		return nil, fmt.Errorf("start control not available: %w", err)
	}

	if profile.LoadingIndicator != "" {
		e.logger.Debug("Waiting for loading to finish", zap.String("selector", profile.LoadingIndicator))
		if err := session.WaitForTextNot(ctx, profile.LoadingIndicator, profile.LoadingSentinel, profile.Timeouts.Loading); err != nil {
			return nil, fmt.Errorf("page never finished loading: %w", err)
		}
	}

	titleSelector, err := e.firstMatching(ctx, session, profile.TitleSelectors, profile.Timeouts.Title)
	if err != nil {
		return nil, err
	}

	html, err := session.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	title := firstText(doc, titleSelector)
	if title == "" {
		return nil, fmt.Errorf("title is empty for selector %q", titleSelector)
	}

	var answers []string
	for _, selector := range profile.AnswerSelectors {
		answers = allTexts(doc, selector)
		if len(answers) > 0 {
			e.logger.Debug("Answer selector matched",
				zap.String("selector", selector),
				zap.Int("count", len(answers)),
			)
			break
		}
		e.logger.Debug("Answer selector missed", zap.String("selector", selector))
	}
	if len(answers) == 0 {
		return nil, errNoAnswers
	}
	if len(answers) != game.AnswerCount {
		return nil, fmt.Errorf("expected %d answers, found %d", game.AnswerCount, len(answers))
	}

	return &game.Candidate{Title: title, CorrectAnswers: answers}, nil
}

// firstMatching returns the first selector that appears within its own timeout
func (e *Extractor) firstMatching(ctx context.Context, session Session, selectors []string, timeout time.Duration) (string, error) {
	for _, selector := range selectors {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := session.WaitForSelector(ctx, selector, timeout); err != nil {
			e.logger.Debug("Title selector missed",
				zap.String("selector", selector),
				zap.Error(err),
			)
			continue
		}
		e.logger.Debug("Title selector matched", zap.String("selector", selector))
		return selector, nil
	}
	return "", errNoTitle
}

var _ ports.Extractor = (*Extractor)(nil)
