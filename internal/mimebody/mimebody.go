// Package mimebody recovers text/plain and text/html bodies from a Gmail
// message part tree.
package mimebody

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/joshsymonds/gmailpack/internal/gmail"
)

// MaxDepth bounds recursion into nested parts.
const MaxDepth = 64

const (
	mimePlain = "text/plain"
	mimeHTML  = "text/html"
)

// ErrTooDeep is returned for part trees nested deeper than MaxDepth.
var ErrTooDeep = errors.New("mime part tree exceeds maximum depth")

// Bodies holds the decoded bodies. An empty string means the body is absent.
type Bodies struct {
	Plain string
	HTML  string
}

// Extract walks root depth-first, pre-order. A later text/plain or text/html
// leaf overwrites an earlier one of the same type.
func Extract(root *gmail.Part) (Bodies, error) {
	var b Bodies
	if root == nil {
		return b, nil
	}
	if err := walk(root, 0, &b); err != nil {
		return Bodies{}, err
	}
	return b, nil
}

func walk(p *gmail.Part, depth int, b *Bodies) error {
	if depth >= MaxDepth {
		return ErrTooDeep
	}
	if p.Body != nil && p.Body.Data != "" && (p.MimeType == mimePlain || p.MimeType == mimeHTML) {
		text, err := Decode(p.Body.Data)
		if err != nil {
			return fmt.Errorf("decode part %q (%s): %w", p.PartID, p.MimeType, err)
		}
		if p.MimeType == mimePlain {
			b.Plain = text
		} else {
			b.HTML = text
		}
	}
	for _, child := range p.Parts {
		if child == nil {
			continue
		}
		if err := walk(child, depth+1, b); err != nil {
			return err
		}
	}
	return nil
}

// Decode accepts base64 in either the standard or URL alphabet, padded or
// not, with embedded line breaks.
func Decode(data string) (string, error) {
	clean := strings.NewReplacer("\r", "", "\n", "", "+", "-", "/", "_").Replace(data)
	clean = strings.TrimRight(clean, "=")
	raw, err := base64.RawURLEncoding.DecodeString(clean)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
