package gmail

import "context"

// Client is the narrow Gmail surface required by gmailpack.
type Client interface {
	ListMessages(ctx context.Context, opts ListOptions) (MessagePage, error)
	ListThreads(ctx context.Context, opts ListOptions) (ThreadPage, error)
	GetMessage(ctx context.Context, id string) (Message, error)
	GetThread(ctx context.Context, id string) (Thread, error)
	ListLabels(ctx context.Context) ([]Label, error)
	GetProfile(ctx context.Context) (Profile, error)
	// Send submits a base64url MIME envelope. threadID is optional and
	// places the message in an existing thread.
	Send(ctx context.Context, raw string, threadID string) (MessageRef, error)
	CreateDraft(ctx context.Context, raw string) (Draft, error)
}
