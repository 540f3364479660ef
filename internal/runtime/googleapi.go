// internal/runtime/googleapi.go adapts *gmail.Service to our small interface
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	gc "github.com/joshsymonds/gmailpack/internal/gmail"
)

const (
	me = "me"

	// DefaultCacheTTL bounds how long message bodies and labels are reused.
	DefaultCacheTTL  = 30 * time.Minute
	DefaultCacheSize = 512

	labelsKey = "labels"
)

// CacheOptions sizes the per-process detail caches. Threads are never cached.
type CacheOptions struct {
	TTL  time.Duration
	Size int
}

// GoogleClient implements gc.Client on top of the generated Gmail API.
type GoogleClient struct {
	svc      *gmail.Service
	messages *expirable.LRU[string, gc.Message]
	labels   *expirable.LRU[string, []gc.Label]
}

func NewGoogleAPIClient(svc *gmail.Service, cache CacheOptions) *GoogleClient {
	if cache.TTL <= 0 {
		cache.TTL = DefaultCacheTTL
	}
	if cache.Size <= 0 {
		cache.Size = DefaultCacheSize
	}
	return &GoogleClient{
		svc:      svc,
		messages: expirable.NewLRU[string, gc.Message](cache.Size, nil, cache.TTL),
		labels:   expirable.NewLRU[string, []gc.Label](1, nil, cache.TTL),
	}
}

func (g *GoogleClient) ListMessages(ctx context.Context, opts gc.ListOptions) (gc.MessagePage, error) {
	call := g.svc.Users.Messages.List(me).
		Q(opts.Query).
		IncludeSpamTrash(opts.IncludeSpamTrash).
		Fields("messages(id,threadId)", "nextPageToken", "resultSizeEstimate")
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.MaxResults > 0 {
		call = call.MaxResults(int64(opts.MaxResults))
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.MessagePage{}, fmt.Errorf("list messages: %w", err)
	}
	page := gc.MessagePage{
		Messages:           make([]gc.MessageRef, 0, len(res.Messages)),
		NextPageToken:      res.NextPageToken,
		ResultSizeEstimate: res.ResultSizeEstimate,
	}
	for _, m := range res.Messages {
		if m == nil {
			continue
		}
		page.Messages = append(page.Messages, gc.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return page, nil
}

func (g *GoogleClient) ListThreads(ctx context.Context, opts gc.ListOptions) (gc.ThreadPage, error) {
	call := g.svc.Users.Threads.List(me).
		Q(opts.Query).
		IncludeSpamTrash(opts.IncludeSpamTrash).
		Fields("threads(id,historyId,snippet)", "nextPageToken", "resultSizeEstimate")
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.MaxResults > 0 {
		call = call.MaxResults(int64(opts.MaxResults))
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.ThreadPage{}, fmt.Errorf("list threads: %w", err)
	}
	page := gc.ThreadPage{
		Threads:            make([]gc.ThreadRef, 0, len(res.Threads)),
		NextPageToken:      res.NextPageToken,
		ResultSizeEstimate: res.ResultSizeEstimate,
	}
	for _, t := range res.Threads {
		if t == nil {
			continue
		}
		page.Threads = append(page.Threads, gc.ThreadRef{ID: t.Id, HistoryID: t.HistoryId, Snippet: t.Snippet})
	}
	return page, nil
}

func (g *GoogleClient) GetMessage(ctx context.Context, id string) (gc.Message, error) {
	if msg, ok := g.messages.Get(id); ok {
		return msg, nil
	}
	res, err := g.svc.Users.Messages.Get(me, id).Format("full").Context(ctx).Do()
	if err != nil {
		return gc.Message{}, fmt.Errorf("get message %s: %w", id, err)
	}
	msg := toMessage(res)
	g.messages.Add(id, msg)
	return msg, nil
}

func (g *GoogleClient) GetThread(ctx context.Context, id string) (gc.Thread, error) {
	res, err := g.svc.Users.Threads.Get(me, id).Format("full").Context(ctx).Do()
	if err != nil {
		return gc.Thread{}, fmt.Errorf("get thread %s: %w", id, err)
	}
	return toThread(res), nil
}

func (g *GoogleClient) ListLabels(ctx context.Context) ([]gc.Label, error) {
	if labels, ok := g.labels.Get(labelsKey); ok {
		return labels, nil
	}
	res, err := g.svc.Users.Labels.List(me).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	labels := make([]gc.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		if l == nil {
			continue
		}
		labels = append(labels, toLabel(l))
	}
	g.labels.Add(labelsKey, labels)
	return labels, nil
}

func (g *GoogleClient) GetProfile(ctx context.Context) (gc.Profile, error) {
	res, err := g.svc.Users.GetProfile(me).Context(ctx).Do()
	if err != nil {
		return gc.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return gc.Profile{
		EmailAddress:  res.EmailAddress,
		MessagesTotal: res.MessagesTotal,
		ThreadsTotal:  res.ThreadsTotal,
		HistoryID:     res.HistoryId,
	}, nil
}

func (g *GoogleClient) Send(ctx context.Context, raw string, threadID string) (gc.MessageRef, error) {
	res, err := g.svc.Users.Messages.Send(me, &gmail.Message{Raw: raw, ThreadId: threadID}).
		Fields(googleapi.Field("id"), googleapi.Field("threadId")).
		Context(ctx).Do()
	if err != nil {
		return gc.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return gc.MessageRef{ID: res.Id, ThreadID: res.ThreadId}, nil
}

func (g *GoogleClient) CreateDraft(ctx context.Context, raw string) (gc.Draft, error) {
	res, err := g.svc.Users.Drafts.Create(me, &gmail.Draft{Message: &gmail.Message{Raw: raw}}).Context(ctx).Do()
	if err != nil {
		return gc.Draft{}, fmt.Errorf("create draft: %w", err)
	}
	d := gc.Draft{ID: res.Id}
	if res.Message != nil {
		d.Message = gc.MessageRef{ID: res.Message.Id, ThreadID: res.Message.ThreadId}
	}
	return d, nil
}

func toMessage(m *gmail.Message) gc.Message {
	if m == nil {
		return gc.Message{}
	}
	return gc.Message{
		ID:           m.Id,
		ThreadID:     m.ThreadId,
		LabelIDs:     append([]string(nil), m.LabelIds...),
		Snippet:      m.Snippet,
		HistoryID:    m.HistoryId,
		InternalDate: m.InternalDate,
		SizeEstimate: m.SizeEstimate,
		Payload:      toPart(m.Payload),
	}
}

func toThread(t *gmail.Thread) gc.Thread {
	out := gc.Thread{ID: t.Id, HistoryID: t.HistoryId, Snippet: t.Snippet}
	out.Messages = make([]gc.Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		if m == nil {
			continue
		}
		out.Messages = append(out.Messages, toMessage(m))
	}
	return out
}

func toPart(p *gmail.MessagePart) *gc.Part {
	if p == nil {
		return nil
	}
	out := &gc.Part{PartID: p.PartId, Filename: p.Filename, MimeType: p.MimeType}
	for _, h := range p.Headers {
		if h == nil {
			continue
		}
		out.Headers = append(out.Headers, gc.Header{Name: h.Name, Value: h.Value})
	}
	if p.Body != nil {
		out.Body = &gc.PartBody{AttachmentID: p.Body.AttachmentId, Size: p.Body.Size, Data: p.Body.Data}
	}
	for _, child := range p.Parts {
		if child == nil {
			continue
		}
		out.Parts = append(out.Parts, toPart(child))
	}
	return out
}

func toLabel(l *gmail.Label) gc.Label {
	out := gc.Label{
		ID:                    l.Id,
		Name:                  l.Name,
		Type:                  l.Type,
		LabelListVisibility:   l.LabelListVisibility,
		MessageListVisibility: l.MessageListVisibility,
		MessagesTotal:         l.MessagesTotal,
		MessagesUnread:        l.MessagesUnread,
		ThreadsTotal:          l.ThreadsTotal,
		ThreadsUnread:         l.ThreadsUnread,
	}
	if l.Color != nil {
		out.Color = &gc.LabelColor{BackgroundColor: l.Color.BackgroundColor, TextColor: l.Color.TextColor}
	}
	return out
}

var _ gc.Client = (*GoogleClient)(nil)
