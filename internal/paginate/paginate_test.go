package paginate

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type pager struct {
	pages  [][]int
	calls  int
	tokens []string
	hints  []int
	err    error
}

func (p *pager) fetch(_ context.Context, token string, hint int) ([]int, string, error) {
	p.tokens = append(p.tokens, token)
	p.hints = append(p.hints, hint)
	idx := p.calls
	p.calls++
	if p.err != nil {
		return nil, "", p.err
	}
	if idx >= len(p.pages) {
		return nil, "", nil
	}
	next := ""
	if idx+1 < len(p.pages) {
		next = fmt.Sprintf("tok-%d", idx+1)
	}
	return p.pages[idx], next, nil
}

func seq(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		pages     [][]int
		wantLen   int
		wantCalls int
	}{
		{name: "truncates-at-boundary", limit: 10, pages: [][]int{seq(0, 7), seq(7, 7), seq(14, 7)}, wantLen: 10, wantCalls: 2},
		{name: "stops-without-token", limit: 100, pages: [][]int{seq(0, 3)}, wantLen: 3, wantCalls: 1},
		{name: "stops-on-empty-page", limit: 100, pages: [][]int{seq(0, 3), {}, seq(3, 3)}, wantLen: 3, wantCalls: 2},
		{name: "exact-fit", limit: 6, pages: [][]int{seq(0, 3), seq(3, 3), seq(6, 3)}, wantLen: 6, wantCalls: 2},
		{name: "default-limit", limit: 0, pages: [][]int{seq(0, 200), seq(200, 200)}, wantLen: DefaultLimit, wantCalls: 2},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			p := &pager{pages: tc.pages}
			got, err := Collect(context.Background(), tc.limit, p.fetch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.wantLen {
				t.Fatalf("got %d items, want %d", len(got), tc.wantLen)
			}
			if p.calls != tc.wantCalls {
				t.Fatalf("got %d calls, want %d", p.calls, tc.wantCalls)
			}
			for i, v := range got {
				if v != i {
					t.Fatalf("item %d = %d, order not preserved", i, v)
				}
			}
		})
	}
}

func TestCollectPassesTokensAndHints(t *testing.T) {
	p := &pager{pages: [][]int{seq(0, 400), seq(400, 400), seq(800, 400)}}
	got, err := Collect(context.Background(), 1000, p.fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1000 {
		t.Fatalf("expected 1000 items, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d = %d, order not preserved", i, v)
		}
	}
	// remaining is 1000, 600, 200 before each call; hints never exceed a page
	wantTokens := []string{"", "tok-1", "tok-2"}
	wantHints := []int{MaxPageSize, MaxPageSize, 200}
	for i := range wantTokens {
		if p.tokens[i] != wantTokens[i] {
			t.Fatalf("call %d token = %q want %q", i, p.tokens[i], wantTokens[i])
		}
		if p.hints[i] != wantHints[i] {
			t.Fatalf("call %d hint = %d want %d", i, p.hints[i], wantHints[i])
		}
	}
}

func TestCollectError(t *testing.T) {
	boom := errors.New("boom")
	p := &pager{err: boom}
	if _, err := Collect(context.Background(), 5, p.fetch); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestCollectEmptyResultIsNonNil(t *testing.T) {
	p := &pager{}
	got, err := Collect(context.Background(), 5, p.fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
