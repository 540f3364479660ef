// Package pack exposes the mailbox formulas and sync tables as plain methods
// with explicitly typed inputs and results.
package pack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshsymonds/gmailpack/internal/gmail"
	"github.com/joshsymonds/gmailpack/internal/outbound"
	"github.com/joshsymonds/gmailpack/internal/query"
	"github.com/joshsymonds/gmailpack/internal/rate"
)

const (
	// DefaultSyncPageSize is the listing page size used by the sync tables.
	DefaultSyncPageSize = 40
	// DefaultConcurrency bounds concurrent detail fetches while hydrating a page.
	DefaultConcurrency = 10
)

// Service runs formulas against a Gmail client.
type Service struct {
	Client   gmail.Client
	Limiter  rate.Limiter
	Logger   *slog.Logger
	Clock    func() time.Time
	Branding *outbound.Branding

	Concurrency      int
	PageSize         int
	IncludeSpamTrash bool
}

// NewService constructs a Service with sane defaults.
func NewService(client gmail.Client, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if limiter == nil {
		limiter = rate.Unlimited{}
	}
	return &Service{
		Client:      client,
		Limiter:     limiter,
		Logger:      logger,
		Clock:       time.Now,
		Concurrency: DefaultConcurrency,
		PageSize:    DefaultSyncPageSize,
	}
}

// Since returns a [now-d, now] date range for query.Criteria.DateRange.
func (s *Service) Since(d time.Duration) []time.Time {
	now := s.Clock()
	return []time.Time{now.Add(-d), now}
}

func (s *Service) listMessages(ctx context.Context, search, pageToken string, maxResults int) (gmail.MessagePage, error) {
	if err := s.wait(ctx, "rate limit messages"); err != nil {
		return gmail.MessagePage{}, err
	}
	opts := s.listOptions(search, pageToken, maxResults)
	s.Logger.DebugContext(ctx, "list messages", "q", opts.Query, "page_token", pageToken)
	page, err := s.Client.ListMessages(ctx, opts)
	if err != nil {
		return gmail.MessagePage{}, fmt.Errorf("list messages: %w", err)
	}
	return page, nil
}

func (s *Service) listThreads(ctx context.Context, search, pageToken string, maxResults int) (gmail.ThreadPage, error) {
	if err := s.wait(ctx, "rate limit threads"); err != nil {
		return gmail.ThreadPage{}, err
	}
	opts := s.listOptions(search, pageToken, maxResults)
	s.Logger.DebugContext(ctx, "list threads", "q", opts.Query, "page_token", pageToken)
	page, err := s.Client.ListThreads(ctx, opts)
	if err != nil {
		return gmail.ThreadPage{}, fmt.Errorf("list threads: %w", err)
	}
	return page, nil
}

// listOptions is the only place a search string reaches the client, so every
// listing call sees translated host keywords.
func (s *Service) listOptions(search, pageToken string, maxResults int) gmail.ListOptions {
	return gmail.ListOptions{
		Query:            query.Translate(search),
		PageToken:        pageToken,
		MaxResults:       maxResults,
		IncludeSpamTrash: s.IncludeSpamTrash,
	}
}

func (s *Service) labelNames(ctx context.Context) (map[string]string, error) {
	if err := s.wait(ctx, "rate limit labels"); err != nil {
		return nil, err
	}
	labels, err := s.Client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return gmail.LabelNames(labels), nil
}

// hydrate fetches every id concurrently, bounded by s.Concurrency. Results keep
// the order of ids. The first failure cancels the rest and fails the batch.
func hydrate[T any](ctx context.Context, s *Service, ids []string, get func(context.Context, string) (T, error)) ([]T, error) {
	out := make([]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			if err := s.wait(gctx, "rate limit details"); err != nil {
				return err
			}
			v, err := get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) wait(ctx context.Context, operation string) error {
	if s.Limiter == nil {
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}
