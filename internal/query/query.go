// Package query builds Gmail search strings from typed criteria and rewrites
// inbox-only search keywords into a form the API accepts.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// substitutions maps search keywords that work in the Gmail web UI but not
// through the API to their internal label-prefix equivalents.
var substitutions = map[string]string{
	"has:yellow-star":      "l:^ss_sy",
	"has:blue-star":        "l:^ss_sb",
	"has:red-star":         "l:^ss_sr",
	"has:orange-star":      "l:^ss_so",
	"has:green-star":       "l:^ss_sg",
	"has:purple-star":      "l:^ss_sp",
	"has:red-bang":         "l:^ss_cr",
	"has:yellow-bang":      "l:^ss_cy",
	"has:blue-info":        "l:^ss_cb",
	"has:orange-guillemet": "l:^ss_co",
	"has:green-check":      "l:^ss_cg",
	"has:purple-question":  "l:^ss_cp",
}

// Translate rewrites every space-separated token that exactly matches a
// known keyword. Quoted phrases are not treated specially.
func Translate(q string) string {
	if q == "" {
		return q
	}
	parts := strings.Split(q, " ")
	for i, part := range parts {
		if sub, ok := substitutions[part]; ok {
			parts[i] = sub
		}
	}
	return strings.Join(parts, " ")
}

// Criteria captures the structured search filters exposed to the host.
// Unread is tri-state: nil leaves read state unconstrained.
type Criteria struct {
	ContainsText      string
	ContainsExactText string
	From              []string
	To                []string
	Subject           string
	Label             string
	Unread            *bool
	Starred           bool
	HasAttachment     bool
	// DateRange is [start, end]; anything other than two values is ignored.
	DateRange         []time.Time
	Advanced          string
}

// Build assembles a Gmail query, one clause per populated criterion, in a
// fixed order.
func Build(c Criteria) string {
	parts := make([]string, 0, 11)
	if c.ContainsText != "" {
		parts = append(parts, c.ContainsText)
	}
	if c.ContainsExactText != "" {
		parts = append(parts, quote(c.ContainsExactText))
	}
	if len(c.From) > 0 {
		parts = append(parts, orGroup("from", c.From))
	}
	if len(c.To) > 0 {
		parts = append(parts, orGroup("to", c.To))
	}
	if c.Subject != "" {
		parts = append(parts, fmt.Sprintf(`subject:"%s"`, c.Subject))
	}
	if c.Label != "" {
		parts = append(parts, "label:"+strings.ReplaceAll(c.Label, " ", "-"))
	}
	if c.Unread != nil {
		if *c.Unread {
			parts = append(parts, "is:unread")
		} else {
			parts = append(parts, "is:read")
		}
	}
	if c.Starred {
		parts = append(parts, "is:starred")
	}
	if c.HasAttachment {
		parts = append(parts, "has:attachment")
	}
	if len(c.DateRange) == 2 {
		start := epoch(c.DateRange[0])
		// Gmail rejects zero and negative epochs.
		if start <= 0 {
			start = 1
		}
		parts = append(parts,
			fmt.Sprintf("after:%d", start),
			fmt.Sprintf("before:%d", epoch(c.DateRange[1])),
		)
	}
	if c.Advanced != "" {
		parts = append(parts, c.Advanced)
	}
	return strings.Join(parts, " ")
}

func orGroup(op string, values []string) string {
	clauses := make([]string, 0, len(values))
	for _, v := range values {
		clauses = append(clauses, fmt.Sprintf(`%s:"%s"`, op, v))
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

// quote renders s as a JSON string literal, which doubles as a Gmail exact
// phrase with embedded quotes escaped.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + s + `"`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// epoch rounds to the nearest Unix second.
func epoch(t time.Time) int64 {
	return t.Round(time.Second).Unix()
}
