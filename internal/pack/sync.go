package pack

import (
	"context"
	"fmt"

	"github.com/joshsymonds/gmailpack/internal/gmail"
	"github.com/joshsymonds/gmailpack/internal/query"
	"github.com/joshsymonds/gmailpack/internal/schema"
)

// SyncInput drives one page of a sync table. Continuation is the token
// returned by the previous page, empty for the first.
type SyncInput struct {
	Criteria        query.Criteria
	PreferPlainText bool
	Continuation    string
}

// SyncPage is one page of sync results. Continuation is nil on the last page.
type SyncPage[T any] struct {
	Result       []T     `json:"result" yaml:"result"`
	Continuation *string `json:"continuation,omitempty" yaml:"continuation,omitempty"`
}

// SyncMessages fetches and normalizes one page of messages matching in.
func (s *Service) SyncMessages(ctx context.Context, in SyncInput) (SyncPage[schema.MessageRecord], error) {
	page, err := s.listMessages(ctx, query.Build(in.Criteria), in.Continuation, s.pageSize())
	if err != nil {
		return SyncPage[schema.MessageRecord]{}, err
	}
	ids := make([]string, 0, len(page.Messages))
	for _, m := range page.Messages {
		ids = append(ids, m.ID)
	}
	msgs, err := hydrate(ctx, s, ids, func(ctx context.Context, id string) (gmail.Message, error) {
		msg, err := s.Client.GetMessage(ctx, id)
		if err != nil {
			return gmail.Message{}, fmt.Errorf("get message %s: %w", id, err)
		}
		return msg, nil
	})
	if err != nil {
		return SyncPage[schema.MessageRecord]{}, err
	}
	names, err := s.labelNames(ctx)
	if err != nil {
		return SyncPage[schema.MessageRecord]{}, err
	}

	out := SyncPage[schema.MessageRecord]{
		Result:       make([]schema.MessageRecord, 0, len(msgs)),
		Continuation: continuation(page.NextPageToken),
	}
	for _, msg := range msgs {
		rec, err := schema.Message(msg, in.PreferPlainText, names)
		if err != nil {
			return SyncPage[schema.MessageRecord]{}, err
		}
		out.Result = append(out.Result, rec)
	}
	s.Logger.InfoContext(ctx, "synced messages", "count", len(out.Result), "more", out.Continuation != nil)
	return out, nil
}

// SyncThreads fetches and summarizes one page of threads matching in.
func (s *Service) SyncThreads(ctx context.Context, in SyncInput) (SyncPage[schema.ThreadSummary], error) {
	page, err := s.listThreads(ctx, query.Build(in.Criteria), in.Continuation, s.pageSize())
	if err != nil {
		return SyncPage[schema.ThreadSummary]{}, err
	}
	ids := make([]string, 0, len(page.Threads))
	for _, t := range page.Threads {
		ids = append(ids, t.ID)
	}
	threads, err := hydrate(ctx, s, ids, func(ctx context.Context, id string) (gmail.Thread, error) {
		t, err := s.Client.GetThread(ctx, id)
		if err != nil {
			return gmail.Thread{}, fmt.Errorf("get thread %s: %w", id, err)
		}
		return t, nil
	})
	if err != nil {
		return SyncPage[schema.ThreadSummary]{}, err
	}

	out := SyncPage[schema.ThreadSummary]{
		Result:       make([]schema.ThreadSummary, 0, len(threads)),
		Continuation: continuation(page.NextPageToken),
	}
	for _, t := range threads {
		sum, err := schema.Thread(t, in.PreferPlainText)
		if err != nil {
			return SyncPage[schema.ThreadSummary]{}, err
		}
		out.Result = append(out.Result, sum)
	}
	s.Logger.InfoContext(ctx, "synced threads", "count", len(out.Result), "more", out.Continuation != nil)
	return out, nil
}

func (s *Service) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultSyncPageSize
	}
	return s.PageSize
}

func continuation(token string) *string {
	if token == "" {
		return nil
	}
	return &token
}
