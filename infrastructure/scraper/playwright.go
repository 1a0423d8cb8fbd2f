package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// waitForTextNotScript resolves once the element is gone or no longer shows the sentinel
const waitForTextNotScript = `([selector, text]) => {
	const el = document.querySelector(selector);
	return !el || el.textContent !== text;
}`

// PlaywrightOptions configures the headless Chromium launch
type PlaywrightOptions struct {
	ExecutablePath string
	// InstallDriver downloads the Playwright driver on first use
	InstallDriver bool
	Args          []string
}

// DefaultPlaywrightOptions returns launch options suitable for containers
func DefaultPlaywrightOptions() PlaywrightOptions {
	return PlaywrightOptions{
		Args: []string{"--no-sandbox", "--disable-setuid-sandbox"},
	}
}

// PlaywrightBrowser launches a fresh headless Chromium per session
type PlaywrightBrowser struct {
	opts        PlaywrightOptions
	logger      *zap.Logger
	installOnce sync.Once
	installErr  error
}

// NewPlaywrightBrowser creates a new Playwright-backed browser
func NewPlaywrightBrowser(opts PlaywrightOptions, logger *zap.Logger) *PlaywrightBrowser {
	return &PlaywrightBrowser{
		opts:   opts,
		logger: logger,
	}
}

func (b *PlaywrightBrowser) install() error {
	b.installOnce.Do(func() {
		if !b.opts.InstallDriver {
			return
		}
		b.logger.Info("Installing Playwright driver")
		b.installErr = playwright.Install(&playwright.RunOptions{
			SkipInstallBrowsers: b.opts.ExecutablePath != "",
			Browsers:            []string{"chromium"},
		})
	})
	return b.installErr
}

// NewSession starts the driver, launches Chromium and opens one page in an
// isolated context. Partial setups are torn down before returning an error.
func (b *PlaywrightBrowser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.install(); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	s := &playwrightSession{}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	s.pw = pw

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     b.opts.Args,
	}
	if b.opts.ExecutablePath != "" {
		launch.ExecutablePath = playwright.String(b.opts.ExecutablePath)
	}
	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	s.browser = browser

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	s.context = bctx

	page, err := bctx.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	s.page = page

	return s, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func millis(ctx context.Context, d time.Duration) *float64 {
	return playwright.Float(float64(boundedTimeout(ctx, d).Milliseconds()))
}

// Navigate waits for network idle, DOM ready and load, all within timeout.
func (s *playwrightSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	step, cancel := withStepDeadline(ctx, timeout)
	defer cancel()

	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   millis(step, timeout),
	}); err != nil {
		return err
	}
	for _, state := range []*playwright.LoadState{playwright.LoadStateDomcontentloaded, playwright.LoadStateLoad} {
		if err := step.Err(); err != nil {
			return err
		}
		if err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   state,
			Timeout: millis(step, timeout),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *playwrightSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	step, cancel := withStepDeadline(ctx, timeout)
	defer cancel()

	loc := s.page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: millis(step, timeout),
	}); err != nil {
		return err
	}
	if err := step.Err(); err != nil {
		return err
	}
	return loc.Click(playwright.LocatorClickOptions{Timeout: millis(step, timeout)})
}

func (s *playwrightSession) WaitForTextNot(ctx context.Context, selector, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.WaitForFunction(waitForTextNotScript, []interface{}{selector, text}, playwright.PageWaitForFunctionOptions{
		Timeout: millis(ctx, timeout),
	})
	return err
}

func (s *playwrightSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: millis(ctx, timeout),
	})
}

func (s *playwrightSession) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.Content()
}

// Close releases page, context, browser and driver, in that order, and
// reports every failure.
func (s *playwrightSession) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
	}
	if s.context != nil {
		errs = append(errs, s.context.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}
