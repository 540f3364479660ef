// Package outbound builds the single-part text/html MIME envelopes used for
// sends and drafts.
package outbound

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/emersion/go-message/mail"
)

// DefaultFallbackURL is linked from the branding trailer when the invoking
// document is unknown.
const DefaultFallbackURL = "https://coda.link/gmail"

// htmlTagRe is a loose "looks like HTML" test: any lowercase tag opener
// followed eventually by a '>'.
var htmlTagRe = regexp.MustCompile(`<\/?[a-z][\s\S]*>`)

// Field is one caller-supplied header, keyed in camelCase (to, replyTo, ...).
// Empty values are skipped.
type Field struct {
	Key   string
	Value string
}

// Location identifies the document a send was invoked from.
type Location struct {
	ProtocolAndHost string
	DocID           string
}

// Branding requests the "Sent via" trailer. The trailer is only added when
// Location is set.
type Branding struct {
	Location    *Location
	FallbackURL string
}

// Encode renders content as a text/html message carrying fields as headers
// and returns the envelope in URL-safe base64.
func Encode(fields []Field, content string, branding *Branding) (string, error) {
	body := content
	if !IsHTML(body) {
		body = plainToHTML(body)
	}
	if branding != nil && branding.Location != nil {
		body += trailer(branding.docURL())
	}

	var h mail.Header
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		name := HeaderName(f.Key)
		switch name {
		case "Subject":
			h.SetSubject(f.Value)
		case "To", "Cc", "Bcc", "From", "Reply-To":
			// well-formed lists are re-encoded so non-ASCII names survive
			if list, err := mail.ParseAddressList(f.Value); err == nil && len(list) > 0 {
				h.SetAddressList(name, list)
				continue
			}
			h.Set(name, f.Value)
		default:
			h.Set(name, f.Value)
		}
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return "", fmt.Errorf("create mime writer: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return "", fmt.Errorf("write mime body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close mime writer: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// IsHTML reports whether content contains something shaped like an HTML tag.
func IsHTML(content string) bool {
	return htmlTagRe.MatchString(content)
}

// plainToHTML wraps each line in a div so line breaks survive HTML rendering.
func plainToHTML(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = "<div><span>" + line + "</span></div>"
	}
	return strings.Join(lines, "<div><br></div>")
}

// HeaderName converts a camelCase field key to a MIME header name:
// "replyTo" becomes "Reply-To".
func HeaderName(key string) string {
	var segments []string
	start := 0
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			segments = append(segments, key[start:i])
			start = i
		}
	}
	segments = append(segments, key[start:])
	for i, s := range segments {
		if s == "" {
			continue
		}
		segments[i] = strings.ToUpper(s[:1]) + s[1:]
	}
	return strings.Join(segments, "-")
}

func (b *Branding) docURL() string {
	if b.Location != nil && b.Location.DocID != "" {
		return b.Location.ProtocolAndHost + "/d/_d" + b.Location.DocID
	}
	if b.FallbackURL != "" {
		return b.FallbackURL
	}
	return DefaultFallbackURL
}

func trailer(docURL string) string {
	return `<div style="color: #AEAEAE;font-size:75%"><br/>` +
		`Sent via <a href="` + docURL + `" target="_blank" style="color: #AEAEAE">this Coda doc</a></div>`
}
