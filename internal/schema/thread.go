package schema

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/joshsymonds/gmailpack/internal/address"
	"github.com/joshsymonds/gmailpack/internal/gmail"
)

// DateLayout renders thread dates in UTC, e.g. "Mon, 02 Jan 2006 15:04:05 GMT".
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ThreadSummary folds a thread's messages into aggregate attributes.
type ThreadSummary struct {
	ID         string                 `json:"id" yaml:"id"`
	StartDate  string                 `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate    string                 `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Snippet    string                 `json:"snippet" yaml:"snippet"`
	Subject    string                 `json:"subject" yaml:"subject"`
	Messages   []ThreadLink           `json:"messages" yaml:"messages"`
	Recipients []address.EmailAddress `json:"recipients" yaml:"recipients"`
}

// Thread summarizes t. Messages keep their source order; the subject is the
// first message's, not the earliest by date.
func Thread(t gmail.Thread, preferPlainText bool) (ThreadSummary, error) {
	sum := ThreadSummary{
		ID:         t.ID,
		Snippet:    t.Snippet,
		Messages:   make([]ThreadLink, 0, len(t.Messages)),
		Recipients: []address.EmailAddress{},
	}

	var (
		first, last time.Time
		seenDate    bool
		recipients  recipientSet
	)
	for i, msg := range t.Messages {
		rec, err := Message(msg, preferPlainText, nil)
		if err != nil {
			return ThreadSummary{}, fmt.Errorf("normalize thread %s: %w", t.ID, err)
		}
		if i == 0 {
			sum.Subject = rec.Subject
		}
		if d, err := mail.ParseDate(rec.Date); err == nil {
			if !seenDate || d.Before(first) {
				first = d
			}
			if !seenDate || d.After(last) {
				last = d
			}
			seenDate = true
		}
		if rec.From != nil {
			recipients.put(*rec.From)
		}
		for _, list := range [][]address.EmailAddress{rec.To, rec.Cc, rec.Bcc} {
			for _, a := range list {
				recipients.put(a)
			}
		}
		sum.Messages = append(sum.Messages, ThreadLink{ID: rec.ID, Subject: rec.Subject})
	}

	if seenDate {
		sum.StartDate = first.UTC().Format(DateLayout)
		sum.EndDate = last.UTC().Format(DateLayout)
	}
	if len(recipients.list) > 0 {
		sum.Recipients = recipients.list
	}
	return sum, nil
}

// recipientSet keeps first-seen order while letting later entries for the
// same email replace the stored name.
type recipientSet struct {
	index map[string]int
	list  []address.EmailAddress
}

func (s *recipientSet) put(a address.EmailAddress) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	if i, ok := s.index[a.Email]; ok {
		s.list[i] = a
		return
	}
	s.index[a.Email] = len(s.list)
	s.list = append(s.list, a)
}
