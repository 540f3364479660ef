// Package address turns RFC 5322 address headers into name/email records.
//
// Individual mailboxes become {display name or address, address}. Named
// groups ("Team: a@x, b@y;") collapse to a single record whose name and email
// are both the group name; members are not expanded.
package address

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	_ "github.com/emersion/go-message/charset" // decode non-UTF-8 encoded words
	"github.com/emersion/go-message/mail"
)

// EmailAddress is a parsed header entry. Name is never empty.
type EmailAddress struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// UnexpectedEntryError reports a parsed entry that is neither a mailbox nor
// a group.
type UnexpectedEntryError struct {
	Value any
}

func (e *UnexpectedEntryError) Error() string {
	return fmt.Sprintf("unexpected parsed email address: %v", e.Value)
}

var errUnterminated = errors.New("unterminated address syntax")

type entry any

type mailbox struct {
	name    string
	address string
}

type group struct {
	name    string
	members []*mail.Address
}

// ParseOne returns the first entry of header, or nil when the header is empty
// or cannot be parsed.
func ParseOne(header string) (*EmailAddress, error) {
	entries, ok := parseList(header)
	if !ok || len(entries) == 0 {
		return nil, nil
	}
	addr, err := toAddress(entries[0])
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// ParseMany returns every entry of header. Empty and unparseable headers
// yield an empty slice.
func ParseMany(header string) ([]EmailAddress, error) {
	entries, ok := parseList(header)
	if !ok {
		return []EmailAddress{}, nil
	}
	out := make([]EmailAddress, 0, len(entries))
	for _, e := range entries {
		addr, err := toAddress(e)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func toAddress(e entry) (EmailAddress, error) {
	switch v := e.(type) {
	case mailbox:
		name := v.name
		if name == "" {
			name = v.address
		}
		return EmailAddress{Name: name, Email: v.address}, nil
	case group:
		return EmailAddress{Name: v.name, Email: v.name}, nil
	default:
		return EmailAddress{}, &UnexpectedEntryError{Value: v}
	}
}

func parseList(header string) ([]entry, bool) {
	if strings.TrimSpace(header) == "" {
		return nil, false
	}
	entries, err := split(header)
	if err != nil {
		return nil, false
	}
	return entries, true
}

// split walks the header once, cutting it at top-level commas and group
// delimiters while skipping quoted strings, comments and angle addresses.
func split(header string) ([]entry, error) {
	var (
		entries   []entry
		buf       strings.Builder
		groupName string
		inGroup   bool
		inQuote   bool
		inAngle   bool
		escaped   bool
		depth     int
	)
	flush := func() error {
		raw := strings.TrimSpace(buf.String())
		buf.Reset()
		if raw == "" {
			return nil
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("parse mailbox %q: %w", raw, err)
		}
		name := addr.Name
		if !strings.Contains(raw, "<") {
			// bare addr-spec: net/mail lifts a trailing comment into the name
			name = ""
		}
		entries = append(entries, mailbox{name: name, address: addr.Address})
		return nil
	}

	for _, r := range header {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && (inQuote || depth > 0):
			escaped = true
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case depth > 0:
			if r == '(' {
				depth++
			} else if r == ')' {
				depth--
			}
		case r == '"':
			inQuote = true
		case r == '(':
			depth++
		case inAngle:
			if r == '>' {
				inAngle = false
			}
		case r == '<':
			inAngle = true
		case r == ':' && !inGroup:
			groupName = displayName(buf.String())
			buf.Reset()
			inGroup = true
			continue
		case r == ';' && inGroup:
			members, err := parseMembers(buf.String())
			if err != nil {
				return nil, err
			}
			entries = append(entries, group{name: groupName, members: members})
			buf.Reset()
			inGroup = false
			continue
		case r == ',' && !inGroup:
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		buf.WriteRune(r)
	}
	if inGroup || inQuote || inAngle || depth > 0 {
		return nil, errUnterminated
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseMembers(raw string) ([]*mail.Address, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	members, err := mail.ParseAddressList(raw)
	if err != nil {
		return nil, fmt.Errorf("parse group members: %w", err)
	}
	return members, nil
}

func displayName(raw string) string {
	name := strings.TrimSpace(raw)
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		name = strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(name[1 : len(name)-1])
	}
	dec := new(mime.WordDecoder)
	if decoded, err := dec.DecodeHeader(name); err == nil {
		return decoded
	}
	return name
}
