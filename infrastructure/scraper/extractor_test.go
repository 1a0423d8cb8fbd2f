package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dailytens/domain/game"
	"dailytens/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSession serves a fixed HTML snapshot. Selectors listed in present
// resolve; anything else times out. Failing steps are injected by name.
type fakeSession struct {
	html       string
	present    map[string]bool
	failStep   string
	panicStep  string
	closed     int
	calls      []string
	navigateTo string
}

func (f *fakeSession) step(name string) error {
	f.calls = append(f.calls, name)
	if f.panicStep == name {
		panic("browser crashed")
	}
	if f.failStep == name {
		return fmt.Errorf("%s: timeout", name)
	}
	return nil
}

func (f *fakeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	f.navigateTo = url
	return f.step("navigate")
}

func (f *fakeSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return f.step("click " + selector)
}

func (f *fakeSession) WaitForTextNot(ctx context.Context, selector, text string, timeout time.Duration) error {
	return f.step("loading")
}

func (f *fakeSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := f.step("wait " + selector); err != nil {
		return err
	}
	if !f.present[selector] {
		return errors.New("timeout waiting for " + selector)
	}
	return nil
}

func (f *fakeSession) Content(ctx context.Context) (string, error) {
	if err := f.step("content"); err != nil {
		return "", err
	}
	return f.html, nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

type fakeBrowser struct {
	session *fakeSession
	err     error
	opts    SessionOptions
}

func (b *fakeBrowser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	b.opts = opts
	if b.err != nil {
		return nil, b.err
	}
	return b.session, nil
}

func boardHTML(title string, answers []string, answerClass string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="test-text">ready</div>`)
	sb.WriteString(`<div class="title-container"><div>` + title + `</div></div>`)
	for _, a := range answers {
		sb.WriteString(`<div class="flip-card"><div class="flip-card-front">?</div>`)
		sb.WriteString(`<div class="flip-card-back"><span class="` + answerClass + `">` + a + `</span></div></div>`)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func tenAnswers() []string {
	out := make([]string, game.AnswerCount)
	for i := range out {
		out[i] = fmt.Sprintf("  Answer %d \n", i+1)
	}
	return out
}

func newTestExtractor(b Browser) *Extractor {
	return NewExtractor(b, config.NewProfileStore(config.DefaultSelectorProfile()), zap.NewNop())
}

func TestExtract_FallsThroughTitleSelectors(t *testing.T) {
	// Arrange: only the second title selector renders
	session := &fakeSession{
		html:    boardHTML(" Longest Rivers ", tenAnswers(), "texty"),
		present: map[string]bool{".title-container div": true},
	}
	browser := &fakeBrowser{session: session}

	// Act
	candidate, ok := newTestExtractor(browser).Extract(context.Background())

	// Assert
	require.True(t, ok)
	assert.Equal(t, "Longest Rivers", candidate.Title)
	require.Len(t, candidate.CorrectAnswers, game.AnswerCount)
	assert.Equal(t, "Answer 1", candidate.CorrectAnswers[0])
	assert.Equal(t, "Answer 10", candidate.CorrectAnswers[9])
	assert.Equal(t, []string{
		"navigate", "click .playButton", "loading", "wait .Title", "wait .title-container div", "content",
	}, session.calls)
	assert.Equal(t, "https://dailytens.com", session.navigateTo)
	assert.Equal(t, SessionOptions{ViewportWidth: 1280, ViewportHeight: 800}, browser.opts)
	assert.Equal(t, 1, session.closed)
}

func TestExtract_FallsThroughAnswerSelectors(t *testing.T) {
	// ".texty" is absent, only the attribute-substring selector matches
	session := &fakeSession{
		html:    boardHTML("Title", tenAnswers(), "my-texty-cell"),
		present: map[string]bool{".title-container div": true},
	}

	candidate, ok := newTestExtractor(&fakeBrowser{session: session}).Extract(context.Background())

	require.True(t, ok)
	assert.Len(t, candidate.CorrectAnswers, game.AnswerCount)
	assert.Equal(t, 1, session.closed)
}

func TestExtract_AllOrNothing(t *testing.T) {
	withBlank := tenAnswers()
	withBlank[4] = "   "

	tests := []struct {
		name    string
		title   string
		answers []string
	}{
		{name: "nine answers", title: "Title", answers: tenAnswers()[:9]},
		{name: "eleven answers", title: "Title", answers: append(tenAnswers(), "extra")},
		{name: "blank answer is dropped", title: "Title", answers: withBlank},
		{name: "no answers", title: "Title", answers: nil},
		{name: "empty title", title: "   ", answers: tenAnswers()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{
				html:    boardHTML(tt.title, tt.answers, "texty"),
				present: map[string]bool{".title-container div": true},
			}

			candidate, ok := newTestExtractor(&fakeBrowser{session: session}).Extract(context.Background())

			assert.False(t, ok)
			assert.Nil(t, candidate)
			assert.Equal(t, 1, session.closed)
		})
	}
}

func TestExtract_StepFailuresAreAbsent(t *testing.T) {
	for _, step := range []string{"navigate", "click .playButton", "loading", "content"} {
		t.Run(step, func(t *testing.T) {
			session := &fakeSession{
				html:     boardHTML("Title", tenAnswers(), "texty"),
				present:  map[string]bool{".Title": true},
				failStep: step,
			}

			candidate, ok := newTestExtractor(&fakeBrowser{session: session}).Extract(context.Background())

			assert.False(t, ok)
			assert.Nil(t, candidate)
			assert.Equal(t, 1, session.closed)
		})
	}
}

func TestExtract_NoTitleSelectorMatches(t *testing.T) {
	session := &fakeSession{html: boardHTML("Title", tenAnswers(), "texty")}

	_, ok := newTestExtractor(&fakeBrowser{session: session}).Extract(context.Background())

	assert.False(t, ok)
	assert.NotContains(t, session.calls, "content")
	assert.Equal(t, 1, session.closed)
}

func TestExtract_PanicStillClosesSession(t *testing.T) {
	session := &fakeSession{panicStep: "navigate"}

	candidate, ok := newTestExtractor(&fakeBrowser{session: session}).Extract(context.Background())

	assert.False(t, ok)
	assert.Nil(t, candidate)
	assert.Equal(t, 1, session.closed)
}

func TestExtract_SessionOpenFailure(t *testing.T) {
	_, ok := newTestExtractor(&fakeBrowser{err: errors.New("no chromium")}).Extract(context.Background())

	assert.False(t, ok)
}

func TestExtract_UsesCurrentProfile(t *testing.T) {
	profile := config.DefaultSelectorProfile()
	profile.SourceURL = "https://mirror.example"
	profile.TitleSelectors = []string{"h1.headline"}
	profile.LoadingIndicator = ""
	store := config.NewProfileStore(config.DefaultSelectorProfile())
	store.Set(profile)

	session := &fakeSession{
		html:    `<html><body><h1 class="headline">Mirror</h1>` + strings.Repeat(`<p class="flip-card"><b class="texty">x</b></p>`, 10) + `</body></html>`,
		present: map[string]bool{"h1.headline": true},
	}

	candidate, ok := NewExtractor(&fakeBrowser{session: session}, store, zap.NewNop()).Extract(context.Background())

	require.True(t, ok)
	assert.Equal(t, "Mirror", candidate.Title)
	assert.Equal(t, "https://mirror.example", session.navigateTo)
	assert.NotContains(t, session.calls, "loading")
}

func TestBoundedTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, boundedTimeout(context.Background(), 5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.LessOrEqual(t, boundedTimeout(ctx, 5*time.Second), time.Second)

	expired, cancelExpired := context.WithTimeout(context.Background(), -time.Second)
	defer cancelExpired()
	assert.Equal(t, minWait, boundedTimeout(expired, 5*time.Second))
}

func TestWithStepDeadline_SharesOneBudget(t *testing.T) {
	step, cancel := withStepDeadline(context.Background(), 50*time.Millisecond)
	defer cancel()

	first := boundedTimeout(step, 50*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	second := boundedTimeout(step, 50*time.Millisecond)

	assert.LessOrEqual(t, first, 50*time.Millisecond)
	assert.LessOrEqual(t, second, 30*time.Millisecond)
}

func TestWithStepDeadline_NeverOutlivesParent(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelParent()

	step, cancel := withStepDeadline(parent, time.Minute)
	defer cancel()

	deadline, ok := step.Deadline()
	require.True(t, ok)
	parentDeadline, _ := parent.Deadline()
	assert.False(t, deadline.After(parentDeadline))
}
