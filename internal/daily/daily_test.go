package daily

import (
	"context"
	"testing"
	"time"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/db"
)

func TestSeedIsStablePerDay(t *testing.T) {
	morning := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)
	tomorrow := morning.Add(24 * time.Hour)

	if Seed(morning, "salt") != Seed(evening, "salt") {
		t.Fatal("seed changed within a day")
	}
	if Seed(morning, "salt") == Seed(tomorrow, "salt") {
		t.Fatal("seed did not change across days")
	}
	if Seed(morning, "salt") == Seed(morning, "pepper") {
		t.Fatal("seed ignores salt")
	}
	if Seed(morning, "salt") < 0 {
		t.Fatal("seed should be non-negative")
	}
	if DateKey(evening) != "2026-10-17" {
		t.Fatalf("unexpected date key %s", DateKey(evening))
	}
}

func TestStoreLeaderboard(t *testing.T) {
	conn, err := db.OpenMigrated(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	st := NewStore(conn)
	ctx := context.Background()

	results := []Result{
		{UserID: "slow", Date: "2026-10-17", Score: 300, WordsFound: 10, ElapsedS: 400},
		{UserID: "fast", Date: "2026-10-17", Score: 300, WordsFound: 10, ElapsedS: 120},
		{UserID: "low", Date: "2026-10-17", Score: 90, WordsFound: 3, ElapsedS: 30},
		{UserID: "other-day", Date: "2026-10-16", Score: 999, WordsFound: 10, ElapsedS: 1},
	}
	for _, r := range results {
		if err := st.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.UserID, err)
		}
	}
	// Second result for the same day is ignored.
	if err := st.InsertResult(ctx, Result{UserID: "low", Date: "2026-10-17", Score: 1000}); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	played, err := st.AlreadyPlayed(ctx, "fast", "2026-10-17")
	if err != nil || !played {
		t.Fatalf("expected fast to have played: %v %v", played, err)
	}
	played, _ = st.AlreadyPlayed(ctx, "fast", "2026-10-16")
	if played {
		t.Fatal("fast did not play on the 16th")
	}

	top, err := st.Leaderboard(ctx, "2026-10-17", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"fast", "slow", "low"}
	if len(top) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].UserID != id {
			t.Fatalf("row %d: expected %s, got %s", i, id, top[i].UserID)
		}
	}
	if top[2].Score != 90 {
		t.Fatalf("duplicate insert overwrote score: %d", top[2].Score)
	}
}
