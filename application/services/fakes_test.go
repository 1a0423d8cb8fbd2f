package services

import (
	"context"
	"fmt"
	"sync"

	"dailytens/domain/events"
	"dailytens/domain/game"
	"dailytens/infrastructure/persistence/memory"
	"github.com/stretchr/testify/mock"
)

// stubRepo wraps the in-memory repository with call counting and error injection
type stubRepo struct {
	*memory.GameRepository

	mu        sync.Mutex
	calls     int
	getErrFor map[string]error
	scanErr   error
	createErr error
}

func newStubRepo(records ...*game.Record) *stubRepo {
	repo := memory.NewGameRepository()
	for _, r := range records {
		if err := repo.CreateIfAbsent(context.Background(), r); err != nil {
			panic(err)
		}
	}
	return &stubRepo{GameRepository: repo, getErrFor: map[string]error{}}
}

func (s *stubRepo) touch() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *stubRepo) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubRepo) Get(ctx context.Context, date string) (*game.Record, bool, error) {
	s.touch()
	if err := s.getErrFor[date]; err != nil {
		return nil, false, err
	}
	return s.GameRepository.Get(ctx, date)
}

func (s *stubRepo) CreateIfAbsent(ctx context.Context, rec *game.Record) error {
	s.touch()
	if s.createErr != nil {
		return s.createErr
	}
	return s.GameRepository.CreateIfAbsent(ctx, rec)
}

func (s *stubRepo) ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error) {
	s.touch()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.GameRepository.ScanDatesAtOrBefore(ctx, date)
}

// MockExtractor is a mock implementation of ports.Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context) (*game.Candidate, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*game.Candidate), args.Bool(1)
}

// MockPublisher is a mock implementation of ports.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func answers(prefix string) []string {
	out := make([]string, game.AnswerCount)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

func record(date, title string) *game.Record {
	return &game.Record{Date: date, Title: title, CorrectAnswers: answers(title)}
}

func candidate(title string) *game.Candidate {
	return &game.Candidate{Title: title, CorrectAnswers: answers(title)}
}
