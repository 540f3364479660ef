package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/gmailpack/internal/pack"
	"github.com/joshsymonds/gmailpack/internal/query"
	"github.com/joshsymonds/gmailpack/internal/runtime"
)

func newRootCmd(a *app) *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "gmailpack",
		Short:         "Query, sync and send Gmail from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config-file", "", "YAML config file")
	flags.String("auth-dir", "", "gmailctl auth directory (default $HOME/.gmailctl)")
	flags.String("access-token", "", "OAuth access token; bypasses the local credential flow")
	flags.String("keyring-service", "", "read the access token from this OS keyring service")
	flags.Int("rps", 0, "max Gmail requests per second")
	flags.Int("concurrency", 0, "max concurrent detail fetches per page")
	flags.StringP("output", "o", "", "output format: json, yaml or text")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Bool("include-spam-trash", false, "include messages from spam and trash")
	for key, name := range map[string]string{
		"auth_dir":           "auth-dir",
		"access_token":       "access-token",
		"keyring_service":    "keyring-service",
		"rps":                "rps",
		"concurrency":        "concurrency",
		"output":             "output",
		"log_level":          "log-level",
		"include_spam_trash": "include-spam-trash",
	} {
		// BindPFlag only fails for a nil flag.
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newSendCmd(a),
		newDraftCmd(a),
		newCountCmd(a, "thread-count", "Count threads matching a search, or all threads", (*pack.Service).ThreadCount),
		newCountCmd(a, "message-count", "Count messages matching a search, or all messages", (*pack.Service).MessageCount),
		newThreadsCmd(a),
		newMessagesCmd(a),
		newSyncMessagesCmd(a),
		newSyncThreadsCmd(a),
		newLabelsCmd(a),
		newTokenCmd(a),
	)
	return root
}

func newSendCmd(a *app) *cobra.Command {
	var in pack.SendInput
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an email; plain text content is converted to HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd.InOrStdin(), in.Content)
			if err != nil {
				return err
			}
			in.Content = content
			svc, err := a.service(cmd.Context(), runtime.ScopeModify)
			if err != nil {
				return err
			}
			id, err := svc.SendEmail(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(id)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.To, "to", "", "recipients, comma separated")
	f.StringVar(&in.Subject, "subject", "", "subject line")
	f.StringVar(&in.Content, "content", "-", "message body, or - to read stdin")
	f.StringVar(&in.Cc, "cc", "", "cc recipients")
	f.StringVar(&in.Bcc, "bcc", "", "bcc recipients")
	f.StringVar(&in.From, "from", "", "send-as address")
	f.StringVar(&in.ReplyTo, "reply-to", "", "reply-to address")
	f.StringVar(&in.ThreadID, "thread-id", "", "reply within this thread")
	f.BoolVar(&in.HideSignature, "hide-signature", false, "omit the \"Sent via\" trailer")
	return cmd
}

func newDraftCmd(a *app) *cobra.Command {
	var in pack.DraftInput
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Save an email as a draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd.InOrStdin(), in.Content)
			if err != nil {
				return err
			}
			in.Content = content
			svc, err := a.service(cmd.Context(), runtime.ScopeModify)
			if err != nil {
				return err
			}
			id, err := svc.CreateDraft(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(id)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.To, "to", "", "recipients, comma separated")
	f.StringVar(&in.Subject, "subject", "", "subject line")
	f.StringVar(&in.Content, "content", "-", "message body, or - to read stdin")
	f.StringVar(&in.Cc, "cc", "", "cc recipients")
	f.StringVar(&in.Bcc, "bcc", "", "bcc recipients")
	return cmd
}

type countFunc func(*pack.Service, context.Context, string) (int64, error)

func newCountCmd(a *app, use, short string, count countFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [search]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), runtime.ScopeReadonly)
			if err != nil {
				return err
			}
			n, err := count(svc, cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			return a.render(n)
		},
	}
}

func newThreadsCmd(a *app) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "threads [search]",
		Short: "List threads matching a search",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), runtime.ScopeReadonly)
			if err != nil {
				return err
			}
			items, err := svc.Threads(cmd.Context(), firstArg(args), a.maxResults(maxResults))
			if err != nil {
				return err
			}
			return a.render(items)
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "cap on returned threads (default max_results)")
	return cmd
}

func newMessagesCmd(a *app) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "messages [search]",
		Short: "List messages matching a search",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), runtime.ScopeReadonly)
			if err != nil {
				return err
			}
			items, err := svc.Messages(cmd.Context(), firstArg(args), a.maxResults(maxResults))
			if err != nil {
				return err
			}
			return a.render(items)
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "cap on returned messages (default max_results)")
	return cmd
}

// syncFlags are the criteria shared by both sync tables.
type syncFlags struct {
	text, exactText, subject, label, advanced string
	from, to                                  []string
	unread, starred, hasAttachment            bool
	last                                      time.Duration
	preferPlainText                           bool
	continuation                              string
}

func (sf *syncFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&sf.text, "text", "", "free text to search for")
	f.StringVar(&sf.exactText, "exact-text", "", "exact phrase to search for")
	f.StringSliceVar(&sf.from, "from", nil, "sender addresses (OR-ed)")
	f.StringSliceVar(&sf.to, "to", nil, "recipient addresses (OR-ed)")
	f.StringVar(&sf.subject, "subject", "", "subject contains")
	f.StringVar(&sf.label, "label", "", "label name")
	f.BoolVar(&sf.unread, "unread", false, "only unread (or --unread=false for read)")
	f.BoolVar(&sf.starred, "starred", false, "only starred")
	f.BoolVar(&sf.hasAttachment, "has-attachment", false, "only messages with attachments")
	f.DurationVar(&sf.last, "last", 0, "only mail from this far back, e.g. 168h")
	f.StringVar(&sf.advanced, "advanced", "", "raw Gmail search appended to the query")
	f.BoolVar(&sf.preferPlainText, "prefer-plain-text", false, "prefer the plain text body")
	f.StringVar(&sf.continuation, "continuation", "", "continuation token from the previous page")
}

func (sf *syncFlags) input(cmd *cobra.Command, svc *pack.Service) pack.SyncInput {
	c := query.Criteria{
		ContainsText:      sf.text,
		ContainsExactText: sf.exactText,
		From:              sf.from,
		To:                sf.to,
		Subject:           sf.subject,
		Label:             sf.label,
		Starred:           sf.starred,
		HasAttachment:     sf.hasAttachment,
		Advanced:          sf.advanced,
	}
	if cmd.Flags().Changed("unread") {
		unread := sf.unread
		c.Unread = &unread
	}
	if sf.last > 0 {
		c.DateRange = svc.Since(sf.last)
	}
	return pack.SyncInput{Criteria: c, PreferPlainText: sf.preferPlainText, Continuation: sf.continuation}
}

func newSyncMessagesCmd(a *app) *cobra.Command {
	var sf syncFlags
	cmd := &cobra.Command{
		Use:   "sync-messages",
		Short: "Fetch one page of normalized messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), runtime.ScopeReadonly)
			if err != nil {
				return err
			}
			page, err := svc.SyncMessages(cmd.Context(), sf.input(cmd, svc))
			if err != nil {
				return err
			}
			return a.render(page)
		},
	}
	sf.register(cmd)
	return cmd
}

func newSyncThreadsCmd(a *app) *cobra.Command {
	var sf syncFlags
	cmd := &cobra.Command{
		Use:   "sync-threads",
		Short: "Fetch one page of thread summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), runtime.ScopeReadonly)
			if err != nil {
				return err
			}
			page, err := svc.SyncThreads(cmd.Context(), sf.input(cmd, svc))
			if err != nil {
				return err
			}
			return a.render(page)
		},
	}
	sf.register(cmd)
	return cmd
}

func newLabelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "labels [search]",
		Short: "List label names, optionally filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context(), runtime.ScopeReadonly)
			if err != nil {
				return err
			}
			names, err := svc.LabelNames(cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			return a.render(names)
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	token := &cobra.Command{
		Use:   "token",
		Short: "Manage the access token stored in the OS keyring",
	}
	token.AddCommand(&cobra.Command{
		Use:   "set <access-token>",
		Short: "Store an access token; later runs read it via keyring_service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := a.settings.KeyringService
			if service == "" {
				service = defaultKeyringService
			}
			store, err := a.tokens(service, a.keyringDir())
			if err != nil {
				return err
			}
			if err := store.SetAccessToken(args[0]); err != nil {
				return err
			}
			a.logger.InfoContext(cmd.Context(), "stored access token", "service", service)
			return nil
		},
	})
	return token
}

func (a *app) maxResults(flag int) int {
	if flag > 0 {
		return flag
	}
	return a.settings.MaxResults
}

func readContent(stdin io.Reader, content string) (string, error) {
	if content != "-" {
		return content, nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return "", errors.New("read content: empty message body")
	}
	return text, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
