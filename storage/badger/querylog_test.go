package badger

import (
	"context"
	"testing"

	"github.com/papervault/papervault/core"
)

func TestQueryLogAppendAssignsIDs(t *testing.T) {
	_, _, queryLog := newTestRepos(t)
	ctx := context.Background()

	first, err := queryLog.AppendQuery(ctx, &core.SearchQuery{Text: "first query", ResultCount: 2})
	if err != nil {
		t.Fatalf("Failed to append query: %v", err)
	}
	second, err := queryLog.AppendQuery(ctx, &core.SearchQuery{Text: "second query", ResultCount: 0})
	if err != nil {
		t.Fatalf("Failed to append query: %v", err)
	}

	if first.Id == 0 || second.Id == 0 {
		t.Fatal("Expected non-zero IDs")
	}
	if second.Id <= first.Id {
		t.Fatalf("Expected increasing IDs, got %d then %d", first.Id, second.Id)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}
}

func TestQueryLogRecentNewestFirst(t *testing.T) {
	_, _, queryLog := newTestRepos(t)
	ctx := context.Background()

	for _, text := range []string{"oldest", "middle", "newest"} {
		if _, err := queryLog.AppendQuery(ctx, &core.SearchQuery{Text: text}); err != nil {
			t.Fatalf("Failed to append query: %v", err)
		}
	}

	recent, err := queryLog.RecentQueries(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get recent queries: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 queries, got %d", len(recent))
	}
	if recent[0].Text != "newest" || recent[1].Text != "middle" {
		t.Fatalf("Wrong order: %q, %q", recent[0].Text, recent[1].Text)
	}
}

func TestQueryLogRecentEmpty(t *testing.T) {
	_, _, queryLog := newTestRepos(t)

	recent, err := queryLog.RecentQueries(context.Background(), 5)
	if err != nil {
		t.Fatalf("Failed to get recent queries: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("Expected no queries, got %d", len(recent))
	}
}
