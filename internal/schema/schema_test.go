package schema

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/joshsymonds/gmailpack/internal/address"
	"github.com/joshsymonds/gmailpack/internal/gmail"
)

func textPart(mimeType, text string) *gmail.Part {
	return &gmail.Part{
		MimeType: mimeType,
		Body:     &gmail.PartBody{Data: base64.URLEncoding.EncodeToString([]byte(text))},
	}
}

func message(id string, headers map[string]string, parts ...*gmail.Part) gmail.Message {
	payload := &gmail.Part{MimeType: "multipart/alternative", Parts: parts}
	for _, name := range []string{"From", "To", "Cc", "Bcc", "Subject", "Date"} {
		if v, ok := headers[name]; ok {
			payload.Headers = append(payload.Headers, gmail.Header{Name: name, Value: v})
		}
	}
	return gmail.Message{ID: id, ThreadID: "t-" + id, Payload: payload}
}

func TestMessageBasics(t *testing.T) {
	msg := message("m1", map[string]string{
		"From":    "Alice <alice@example.com>",
		"To":      "bob@example.com, Carol <carol@example.com>",
		"Subject": "Quarterly",
		"Date":    "Tue, 01 Oct 2024 10:00:00 +0000",
	}, textPart("text/plain", "hi"), textPart("text/html", "<p>hi</p>"))
	msg.Snippet = "hi"
	msg.LabelIDs = []string{"INBOX", "Label_1", "Label_unknown"}

	rec, err := Message(msg, false, map[string]string{"INBOX": "INBOX", "Label_1": "Receipts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "m1" || rec.Snippet != "hi" || rec.Subject != "Quarterly" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.From == nil || *rec.From != (address.EmailAddress{Name: "Alice", Email: "alice@example.com"}) {
		t.Fatalf("unexpected from: %+v", rec.From)
	}
	if len(rec.To) != 2 || rec.To[1].Name != "Carol" {
		t.Fatalf("unexpected to: %+v", rec.To)
	}
	if rec.Cc == nil || len(rec.Cc) != 0 || rec.Bcc == nil {
		t.Fatalf("expected empty cc/bcc slices, got %+v %+v", rec.Cc, rec.Bcc)
	}
	if rec.Thread != (ThreadLink{ID: "t-m1", Subject: "Quarterly"}) {
		t.Fatalf("unexpected thread link: %+v", rec.Thread)
	}
	wantLabels := []string{"INBOX", "Receipts", "Label_unknown"}
	if strings.Join(rec.Labels, ",") != strings.Join(wantLabels, ",") {
		t.Fatalf("labels = %v want %v", rec.Labels, wantLabels)
	}
	if rec.Text != "<p>hi</p>" {
		t.Fatalf("text = %q", rec.Text)
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		name      string
		preferTxt bool
		parts     []*gmail.Part
		want      string
	}{
		{
			name:      "prefer-plain-escapes",
			preferTxt: true,
			parts:     []*gmail.Part{textPart("text/plain", "a < b\nc > d"), textPart("text/html", "<b>x</b>")},
			want:      "a &lt; b<br/>c &gt; d",
		},
		{
			name:      "prefer-plain-falls-back-to-html",
			preferTxt: true,
			parts:     []*gmail.Part{textPart("text/html", "<b>x</b>")},
			want:      "<b>x</b>",
		},
		{
			name:  "html-strips-style",
			parts: []*gmail.Part{textPart("text/html", "<style>p{color:red}</style><p>x</p><STYLE>a{}</STYLE>!")},
			want:  "!",
		},
		{
			name:  "html-falls-back-to-plain",
			parts: []*gmail.Part{textPart("text/plain", "only plain")},
			want:  "only plain",
		},
		{
			name: "no-bodies",
			want: "",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Message(message("m", nil, tc.parts...), tc.preferTxt, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Text != tc.want {
				t.Fatalf("text = %q want %q", rec.Text, tc.want)
			}
		})
	}
}

func TestMessageTruncatesByCharacter(t *testing.T) {
	body := strings.Repeat("é", MaxTextChars+10)
	rec, err := Message(message("m", nil, textPart("text/plain", body)), true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len([]rune(rec.Text)); got != MaxTextChars {
		t.Fatalf("text has %d characters, want %d", got, MaxTextChars)
	}
}

func TestMessageWithoutLabelsKeepsIDs(t *testing.T) {
	msg := message("m", nil)
	msg.LabelIDs = []string{"Label_9"}
	rec, err := Message(msg, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Labels) != 1 || rec.Labels[0] != "Label_9" {
		t.Fatalf("labels = %v", rec.Labels)
	}
}

func TestMessageMalformedBody(t *testing.T) {
	msg := message("m", nil, &gmail.Part{MimeType: "text/plain", Body: &gmail.PartBody{Data: "%%%"}})
	if _, err := Message(msg, false, nil); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestThreadDatesAndSubject(t *testing.T) {
	thread := gmail.Thread{
		ID:      "t1",
		Snippet: "latest",
		Messages: []gmail.Message{
			message("a", map[string]string{"Subject": "first", "Date": "Thu, 01 Jan 1970 00:01:40 +0000"}),
			message("b", map[string]string{"Subject": "Re: first", "Date": "Thu, 01 Jan 1970 00:00:50 +0000"}),
			message("c", map[string]string{"Subject": "Re: Re: first", "Date": "Thu, 01 Jan 1970 00:03:20 +0000"}),
			message("d", map[string]string{"Subject": "junk", "Date": "not a date"}),
		},
	}
	sum, err := Thread(thread, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StartDate != "Thu, 01 Jan 1970 00:00:50 GMT" {
		t.Fatalf("start = %q", sum.StartDate)
	}
	if sum.EndDate != "Thu, 01 Jan 1970 00:03:20 GMT" {
		t.Fatalf("end = %q", sum.EndDate)
	}
	if sum.Subject != "first" || sum.Snippet != "latest" || sum.ID != "t1" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	var ids []string
	for _, m := range sum.Messages {
		ids = append(ids, m.ID)
	}
	if strings.Join(ids, ",") != "a,b,c,d" {
		t.Fatalf("message order = %v", ids)
	}
}

func TestThreadNoParseableDates(t *testing.T) {
	sum, err := Thread(gmail.Thread{ID: "t", Messages: []gmail.Message{message("a", map[string]string{"Date": "??"})}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StartDate != "" || sum.EndDate != "" {
		t.Fatalf("expected absent dates, got %q %q", sum.StartDate, sum.EndDate)
	}
}

func TestThreadEmpty(t *testing.T) {
	sum, err := Thread(gmail.Thread{ID: "t"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Messages == nil || sum.Recipients == nil {
		t.Fatalf("expected empty non-nil slices: %+v", sum)
	}
	if sum.Subject != "" || sum.StartDate != "" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestThreadRecipients(t *testing.T) {
	thread := gmail.Thread{
		ID: "t",
		Messages: []gmail.Message{
			message("a", map[string]string{
				"From": "Alice <alice@example.com>",
				"To":   "bob@example.com",
				"Cc":   "Carol <carol@example.com>",
			}),
			message("b", map[string]string{
				"From": "Bob Builder <bob@example.com>",
				"To":   "Alice Smith <alice@example.com>",
				"Bcc":  "dan@example.com",
			}),
		},
	}
	sum, err := Thread(thread, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []address.EmailAddress{
		{Name: "Alice Smith", Email: "alice@example.com"},
		{Name: "Bob Builder", Email: "bob@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
		{Name: "dan@example.com", Email: "dan@example.com"},
	}
	if len(sum.Recipients) != len(want) {
		t.Fatalf("recipients = %+v", sum.Recipients)
	}
	for i := range want {
		if sum.Recipients[i] != want[i] {
			t.Fatalf("recipient %d = %+v want %+v", i, sum.Recipients[i], want[i])
		}
	}
}
