package deck

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/threadspeaker/scout-with-friends/internal/game/card"
)

func faceKey(c card.Card) string {
	low, high := c.Faces()
	return fmt.Sprintf("%d-%d", low, high)
}

func faceCounts(cards []card.Card) map[string]int {
	counts := make(map[string]int, len(cards))
	for _, c := range cards {
		counts[faceKey(c)]++
	}
	return counts
}

func TestEngine_NewDeckHasEveryPairOnce(t *testing.T) {
	t.Parallel()

	deck := NewEngine(1, 2).NewDeck()

	require.Len(t, deck, FullDeckSize)
	counts := faceCounts(deck)
	assert.Len(t, counts, 45)
	for key, n := range counts {
		assert.Equal(t, 1, n, "pair %s", key)
	}
	for _, c := range deck {
		_, err := card.New(c.Primary, c.Secondary)
		assert.NoError(t, err)
	}
}

func TestEngine_BuildDeckSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		players  int
		size     int
		perHand  int
		leftover int
	}{
		{players: 3, size: 36, perHand: 12, leftover: 0},
		{players: 4, size: 44, perHand: 11, leftover: 0},
		{players: 5, size: 45, perHand: 9, leftover: 0},
		{players: 2, size: 45, perHand: 22, leftover: 1},
		{players: 6, size: 45, perHand: 7, leftover: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d players", tt.players), func(t *testing.T) {
			t.Parallel()
			e := NewEngine(uint64(tt.players), 99)

			deck, err := e.BuildDeck(tt.players)
			require.NoError(t, err)
			assert.Len(t, deck, tt.size)

			hands, rest, err := Deal(deck, tt.players)
			require.NoError(t, err)
			require.Len(t, hands, tt.players)
			for _, h := range hands {
				assert.Len(t, h, tt.perHand)
			}
			assert.Len(t, rest, tt.leftover)
		})
	}
}

func TestEngine_BuildDeckFilters(t *testing.T) {
	t.Parallel()

	e := NewEngine(7, 7)

	three, err := e.BuildDeck(3)
	require.NoError(t, err)
	for _, c := range three {
		assert.False(t, c.HasFace(10), "3 人局不应包含 10: %v", c)
	}

	four, err := e.BuildDeck(4)
	require.NoError(t, err)
	counts := faceCounts(four)
	assert.Zero(t, counts["9-10"])
	assert.Equal(t, 1, counts["8-10"])
	assert.Equal(t, 1, counts["1-10"])

	_, err = e.BuildDeck(0)
	assert.ErrorIs(t, err, ErrNoPlayers)
}

func TestEngine_OrientationIsRandomPerCard(t *testing.T) {
	t.Parallel()

	e := NewEngine(42, 4242)
	lowFirst, total := 0, 0
	for range 200 {
		for _, c := range e.NewDeck() {
			if c.Primary < c.Secondary {
				lowFirst++
			}
			total++
		}
	}

	ratio := float64(lowFirst) / float64(total)
	assert.InDelta(t, 0.5, ratio, 0.03)
}

func TestDeal_PartitionsDeck(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		players := rapid.IntRange(1, 8).Draw(t, "players")
		seed := rapid.Uint64().Draw(t, "seed")
		e := NewEngine(seed, seed^0x5bd1e995)

		deck, err := e.BuildDeck(players)
		if err != nil {
			t.Fatal(err)
		}
		hands, rest, err := Deal(deck, players)
		if err != nil {
			t.Fatal(err)
		}

		var dealt []card.Card
		for _, h := range hands {
			if len(h) != len(deck)/players {
				t.Fatalf("hand size %d, want %d", len(h), len(deck)/players)
			}
			dealt = append(dealt, h...)
		}
		if len(rest) != len(deck)%players {
			t.Fatalf("remainder %d, want %d", len(rest), len(deck)%players)
		}

		// 发出的牌 + 余牌 = 牌堆，且不重复
		all := append(dealt, rest...)
		counts := faceCounts(all)
		if len(counts) != len(deck) {
			t.Fatalf("duplicate cards dealt: %d distinct of %d", len(counts), len(deck))
		}
		for i, c := range deck {
			if all[i] != c {
				t.Fatalf("card %d dealt out of order", i)
			}
		}
	})
}

func TestShuffle_PreservesMultiset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(rapid.IntRange(0, 20)).Draw(t, "items")
		seed := rapid.Uint64().Draw(t, "seed")

		before := make(map[int]int)
		for _, v := range items {
			before[v]++
		}

		shuffled := append([]int(nil), items...)
		Shuffle(NewEngine(seed, 1), shuffled)

		after := make(map[int]int)
		for _, v := range shuffled {
			after[v]++
		}
		if len(before) != len(after) {
			t.Fatalf("distinct values changed: %v -> %v", before, after)
		}
		for v, n := range before {
			if after[v] != n {
				t.Fatalf("count of %d changed: %d -> %d", v, n, after[v])
			}
		}
	})
}

func TestShuffle_UniformPermutations(t *testing.T) {
	t.Parallel()

	const (
		trials = 24000
		perms  = 24 // 4!
		// 自由度 23，p = 0.001 的卡方临界值
		critical = 49.73
	)

	e := NewEngine(2024, 11)
	counts := make(map[[4]int]int, perms)
	for range trials {
		items := []int{0, 1, 2, 3}
		Shuffle(e, items)
		counts[[4]int(items)]++
	}

	require.Len(t, counts, perms)
	expected := float64(trials) / perms
	chi2 := 0.0
	for _, observed := range counts {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}
	assert.Less(t, chi2, critical)
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	require.Len(t, rules, 2)
	assert.Equal(t, []int{10}, rules[3].RemoveFaces)
	assert.Equal(t, [][2]int{{9, 10}}, rules[4].RemovePairs)

	_, err := ParseRules([]byte("rules:\n  - players: 0\n"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("rules:\n  - players: 3\n  - players: 3\n"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("rules:\n  - players: 4\n    remove_pairs: [[5, 5]]\n"))
	assert.Error(t, err)

	custom, err := ParseRules([]byte("rules:\n  - players: 5\n    remove_faces: [1]\n"))
	require.NoError(t, err)
	deck, err := NewEngine(3, 3).WithRules(custom).BuildDeck(5)
	require.NoError(t, err)
	assert.Len(t, deck, 36)
}
