// Package services – deterministic selector
//
// Samples members for a (chat, command, day) key so that repeated calls on
// the same day, in any process, pick the same members. The seed is derived
// from the key string and the pool is sorted into a canonical order before
// sampling, so determinism is not defeated by the iteration order of the
// underlying query. The seeding is advisory only; it has no security role.
package services

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// selectionSeed derives the deterministic seed for one selection key.
func selectionSeed(chatID int64, command, day string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d_%s_%s", chatID, command, day)
	return int64(h.Sum64())
}

// SelectMembers deterministically samples up to count distinct members from
// pool for the given key. When the pool is smaller than count the whole pool
// is returned in canonical order and the caller decides whether to proceed.
//
// Each call constructs its own seeded generator; no global random state is
// shared or reseeded, so concurrent selections cannot interfere.
func SelectMembers(pool []domain.User, chatID int64, command, day string, count int) []domain.User {
	sorted := make([]domain.User, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if len(sorted) <= count {
		return sorted
	}

	rng := rand.New(rand.NewSource(selectionSeed(chatID, command, day)))
	picked := make([]domain.User, 0, count)
	for _, idx := range rng.Perm(len(sorted))[:count] {
		picked = append(picked, sorted[idx])
	}
	return picked
}
