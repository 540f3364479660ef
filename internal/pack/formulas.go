package pack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshsymonds/gmailpack/internal/gmail"
	"github.com/joshsymonds/gmailpack/internal/outbound"
	"github.com/joshsymonds/gmailpack/internal/paginate"
)

// ErrNoRecipient is returned by SendEmail when To is blank.
var ErrNoRecipient = errors.New("at least one recipient is required")

// SendInput holds the SendEmail parameters. ThreadID places the message in an
// existing thread; HideSignature suppresses the branding trailer.
type SendInput struct {
	To            string
	Subject       string
	Content       string
	Cc            string
	Bcc           string
	From          string
	ReplyTo       string
	HideSignature bool
	ThreadID      string
}

// DraftInput holds the CreateDraft parameters.
type DraftInput struct {
	To      string
	Subject string
	Content string
	Cc      string
	Bcc     string
}

// ThreadListItem is one row of the Threads formula.
type ThreadListItem struct {
	Snippet   string `json:"snippet" yaml:"snippet"`
	ID        string `json:"id" yaml:"id"`
	HistoryID uint64 `json:"historyId" yaml:"historyId"`
}

// MessageListItem is one row of the Messages formula.
type MessageListItem struct {
	ID       string `json:"id" yaml:"id"`
	ThreadID string `json:"threadId" yaml:"threadId"`
}

// SendEmail sends in and returns the new message id.
func (s *Service) SendEmail(ctx context.Context, in SendInput) (string, error) {
	if strings.TrimSpace(in.To) == "" {
		return "", fmt.Errorf("send email: %w", ErrNoRecipient)
	}
	var branding *outbound.Branding
	if !in.HideSignature {
		branding = s.Branding
	}
	// ThreadID and HideSignature are request controls, never MIME headers.
	raw, err := outbound.Encode([]outbound.Field{
		{Key: "to", Value: in.To},
		{Key: "subject", Value: in.Subject},
		{Key: "cc", Value: in.Cc},
		{Key: "bcc", Value: in.Bcc},
		{Key: "from", Value: in.From},
		{Key: "replyTo", Value: in.ReplyTo},
	}, in.Content, branding)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	if err := s.wait(ctx, "rate limit send"); err != nil {
		return "", err
	}
	ref, err := s.Client.Send(ctx, raw, in.ThreadID)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	s.Logger.InfoContext(ctx, "sent message", "id", ref.ID, "thread", ref.ThreadID)
	return ref.ID, nil
}

// CreateDraft saves in as a draft and returns the draft id. Drafts never carry
// the branding trailer.
func (s *Service) CreateDraft(ctx context.Context, in DraftInput) (string, error) {
	raw, err := outbound.Encode([]outbound.Field{
		{Key: "to", Value: in.To},
		{Key: "subject", Value: in.Subject},
		{Key: "cc", Value: in.Cc},
		{Key: "bcc", Value: in.Bcc},
	}, in.Content, nil)
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}
	if err := s.wait(ctx, "rate limit draft"); err != nil {
		return "", err
	}
	draft, err := s.Client.CreateDraft(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}
	s.Logger.InfoContext(ctx, "created draft", "id", draft.ID)
	return draft.ID, nil
}

// ThreadCount estimates the threads matching search, or returns the mailbox
// total when search is empty.
func (s *Service) ThreadCount(ctx context.Context, search string) (int64, error) {
	if search == "" {
		profile, err := s.profile(ctx)
		if err != nil {
			return 0, err
		}
		return profile.ThreadsTotal, nil
	}
	page, err := s.listThreads(ctx, search, "", 0)
	if err != nil {
		return 0, err
	}
	return page.ResultSizeEstimate, nil
}

// MessageCount estimates the messages matching search, or returns the mailbox
// total when search is empty.
func (s *Service) MessageCount(ctx context.Context, search string) (int64, error) {
	if search == "" {
		profile, err := s.profile(ctx)
		if err != nil {
			return 0, err
		}
		return profile.MessagesTotal, nil
	}
	page, err := s.listMessages(ctx, search, "", 0)
	if err != nil {
		return 0, err
	}
	return page.ResultSizeEstimate, nil
}

// Threads lists up to maxResults threads matching search.
func (s *Service) Threads(ctx context.Context, search string, maxResults int) ([]ThreadListItem, error) {
	return paginate.Collect(ctx, maxResults, func(ctx context.Context, token string, hint int) ([]ThreadListItem, string, error) {
		page, err := s.listThreads(ctx, search, token, hint)
		if err != nil {
			return nil, "", err
		}
		items := make([]ThreadListItem, 0, len(page.Threads))
		for _, t := range page.Threads {
			items = append(items, ThreadListItem{Snippet: t.Snippet, ID: t.ID, HistoryID: t.HistoryID})
		}
		return items, page.NextPageToken, nil
	})
}

// Messages lists up to maxResults messages matching search.
func (s *Service) Messages(ctx context.Context, search string, maxResults int) ([]MessageListItem, error) {
	return paginate.Collect(ctx, maxResults, func(ctx context.Context, token string, hint int) ([]MessageListItem, string, error) {
		page, err := s.listMessages(ctx, search, token, hint)
		if err != nil {
			return nil, "", err
		}
		items := make([]MessageListItem, 0, len(page.Messages))
		for _, m := range page.Messages {
			items = append(items, MessageListItem{ID: m.ID, ThreadID: m.ThreadID})
		}
		return items, page.NextPageToken, nil
	})
}

// LabelNames returns label names containing search, case-insensitively, in
// provider order. An empty search returns every label.
func (s *Service) LabelNames(ctx context.Context, search string) ([]string, error) {
	if err := s.wait(ctx, "rate limit labels"); err != nil {
		return nil, err
	}
	labels, err := s.Client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	needle := strings.ToLower(search)
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if needle == "" || strings.Contains(strings.ToLower(l.Name), needle) {
			names = append(names, l.Name)
		}
	}
	return names, nil
}

func (s *Service) profile(ctx context.Context) (gmail.Profile, error) {
	if err := s.wait(ctx, "rate limit profile"); err != nil {
		return gmail.Profile{}, err
	}
	profile, err := s.Client.GetProfile(ctx)
	if err != nil {
		return gmail.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}
