package services

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dizzymate/aura-bot/internal/domain"
)

func poolOf(ids ...int64) []domain.User {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.User{ID: id})
	}
	return out
}

func idsOf(users []domain.User) []int64 {
	out := make([]int64, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestSelectMembers_DeterministicAcrossCalls(t *testing.T) {
	pool := poolOf(11, 22, 33, 44, 55, 66, 77)

	first := SelectMembers(pool, 100, "gay", "2025-01-01", 1)
	for i := 0; i < 20; i++ {
		again := SelectMembers(pool, 100, "gay", "2025-01-01", 1)
		if len(again) != 1 || again[0].ID != first[0].ID {
			t.Fatalf("call %d diverged: %v vs %v", i, idsOf(again), idsOf(first))
		}
	}
}

func TestSelectMembers_DeterministicAcrossPoolOrder(t *testing.T) {
	pool := poolOf(11, 22, 33, 44, 55, 66, 77)
	want := SelectMembers(pool, 100, "couple", "2025-01-01", 2)

	shuffled := make([]domain.User, len(pool))
	copy(shuffled, pool)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := SelectMembers(shuffled, 100, "couple", "2025-01-01", 2)
		if len(got) != 2 || got[0].ID != want[0].ID || got[1].ID != want[1].ID {
			t.Fatalf("order %d changed the pick: %v vs %v", i, idsOf(got), idsOf(want))
		}
	}
}

func TestSelectMembers_DistinctMembers(t *testing.T) {
	pool := poolOf(1, 2, 3)
	got := SelectMembers(pool, 100, "couple", "2025-01-01", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("members must be distinct, both %d", got[0].ID)
	}
}

func TestSelectMembers_PoolSmallerThanCount(t *testing.T) {
	pool := poolOf(5)
	got := SelectMembers(pool, 100, "couple", "2025-01-01", 2)
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("degraded result should be the whole pool, got %v", idsOf(got))
	}

	if got := SelectMembers(nil, 100, "gay", "2025-01-01", 1); len(got) != 0 {
		t.Fatalf("empty pool should yield empty result, got %v", idsOf(got))
	}
}

func TestSelectMembers_KeyChangesSelectionSpace(t *testing.T) {
	// Distinct keys must use distinct seeds. With a large pool it would be
	// vanishingly unlikely for 30 different days to agree on one member,
	// so a full agreement indicates a seeding bug.
	pool := make([]domain.User, 0, 50)
	for i := int64(1); i <= 50; i++ {
		pool = append(pool, domain.User{ID: i})
	}

	first := SelectMembers(pool, 100, "gay", "2025-01-01", 1)[0].ID
	allSame := true
	for d := 2; d <= 31; d++ {
		day := fmt.Sprintf("2025-01-%02d", d)
		if SelectMembers(pool, 100, "gay", day, 1)[0].ID != first {
			allSame = false
			break
		}
	}
	if allSame {
		t.Fatalf("every day picked member %d; seed does not vary with the day", first)
	}
}
