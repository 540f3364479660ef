// internal/runtime/auth.go
package runtime

import (
	"context"
	"fmt"

	"github.com/mbrt/gmailctl/cmd/gmailctl/localcred"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scope is the access level a command needs. localcred authorizes with
// whatever scopes the token in the auth directory was granted, so Scope only
// records intent and is logged when a client is built.
type Scope int

const (
	ScopeReadonly Scope = iota
	// ScopeModify also covers sending and drafting.
	ScopeModify
)

func (s Scope) String() string {
	switch s {
	case ScopeReadonly:
		return "readonly"
	case ScopeModify:
		return "modify"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// AuthOptions selects how the Gmail service is authorized. A non-empty
// AccessToken wins over the on-disk credentials in Dir.
type AuthOptions struct {
	Dir         string
	AccessToken string
	Scope       Scope
}

// NewGmailService authorizes a *gmail.Service either from a bearer token
// handed over by the host or via gmailctl's local credential flow.
func NewGmailService(ctx context.Context, opts AuthOptions) (*gmail.Service, error) {
	if opts.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
		svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create gmail service: %w", err)
		}
		return svc, nil
	}
	svc, err := (localcred.Provider{}).Service(ctx, opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("load credentials from %s: %w", opts.Dir, err)
	}
	return svc, nil
}

// NewGmailClient returns the cached API adapter behind gc.Client.
func NewGmailClient(ctx context.Context, opts AuthOptions, cache CacheOptions) (*GoogleClient, error) {
	svc, err := NewGmailService(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewGoogleAPIClient(svc, cache), nil
}
