// Package schema converts provider messages and threads into the flat,
// presentation-ready records returned to the host document.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joshsymonds/gmailpack/internal/address"
	"github.com/joshsymonds/gmailpack/internal/gmail"
	"github.com/joshsymonds/gmailpack/internal/mimebody"
)

// MaxTextChars caps MessageRecord.Text, counted in characters.
const MaxTextChars = 4096

// styleBlockRe strips Outlook-style <style> blocks. Greedy: everything from
// the first <style to the last </style> goes.
var styleBlockRe = regexp.MustCompile(`(?is)<style.*</style>`)

var plainEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "\n", "<br/>")

// ThreadLink is a lightweight reference between messages and threads.
type ThreadLink struct {
	ID      string `json:"id" yaml:"id"`
	Subject string `json:"subject" yaml:"subject"`
}

// MessageRecord is the normalized form of a single message.
type MessageRecord struct {
	ID      string                 `json:"id" yaml:"id"`
	Snippet string                 `json:"snippet" yaml:"snippet"`
	Labels  []string               `json:"labels" yaml:"labels"`
	To      []address.EmailAddress `json:"to" yaml:"to"`
	From    *address.EmailAddress  `json:"from,omitempty" yaml:"from,omitempty"`
	Subject string                 `json:"subject" yaml:"subject"`
	Date    string                 `json:"date" yaml:"date"`
	Cc      []address.EmailAddress `json:"cc" yaml:"cc"`
	Bcc     []address.EmailAddress `json:"bcc" yaml:"bcc"`
	Thread  ThreadLink             `json:"thread" yaml:"thread"`
	Text    string                 `json:"text" yaml:"text"`
}

// Message normalizes msg. labelNames maps label ids to display names; when nil
// the raw ids are kept.
func Message(msg gmail.Message, preferPlainText bool, labelNames map[string]string) (MessageRecord, error) {
	headers := headerMap(msg.Payload)

	bodies, err := mimebody.Extract(msg.Payload)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("extract body of message %s: %w", msg.ID, err)
	}

	from, err := address.ParseOne(headers["From"])
	if err != nil {
		return MessageRecord{}, fmt.Errorf("parse From of message %s: %w", msg.ID, err)
	}
	rec := MessageRecord{
		ID:      msg.ID,
		Snippet: msg.Snippet,
		Labels:  resolveLabels(msg.LabelIDs, labelNames),
		From:    from,
		Subject: headers["Subject"],
		Date:    headers["Date"],
		Thread:  ThreadLink{ID: msg.ThreadID, Subject: headers["Subject"]},
		Text:    truncate(displayText(bodies, preferPlainText), MaxTextChars),
	}
	for _, f := range []struct {
		header string
		dst    *[]address.EmailAddress
	}{
		{"To", &rec.To},
		{"Cc", &rec.Cc},
		{"Bcc", &rec.Bcc},
	} {
		list, err := address.ParseMany(headers[f.header])
		if err != nil {
			return MessageRecord{}, fmt.Errorf("parse %s of message %s: %w", f.header, msg.ID, err)
		}
		*f.dst = list
	}
	return rec, nil
}

// headerMap indexes the top-level headers; a repeated name keeps its last value.
func headerMap(p *gmail.Part) map[string]string {
	out := map[string]string{}
	if p == nil {
		return out
	}
	for _, h := range p.Headers {
		out[h.Name] = h.Value
	}
	return out
}

func displayText(b mimebody.Bodies, preferPlainText bool) string {
	html := b.HTML
	if html != "" {
		html = styleBlockRe.ReplaceAllString(html, "")
	}
	plain := b.Plain
	if plain != "" {
		plain = plainEscaper.Replace(plain)
	}
	if preferPlainText {
		return firstNonEmpty(plain, html)
	}
	return firstNonEmpty(html, plain)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveLabels(ids []string, names map[string]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
			continue
		}
		out = append(out, id)
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
