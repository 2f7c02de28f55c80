package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		primary   int
		secondary int
		hasError  bool
	}{
		{name: "Valid", primary: 3, secondary: 7},
		{name: "Valid reversed", primary: 10, secondary: 1},
		{name: "Same faces", primary: 4, secondary: 4, hasError: true},
		{name: "Zero face", primary: 0, secondary: 4, hasError: true},
		{name: "Face above ten", primary: 2, secondary: 11, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(tt.primary, tt.secondary)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.primary, c.Primary)
			assert.Equal(t, tt.secondary, c.Secondary)
		})
	}
}

func TestCard_FacesIgnoreOrientation(t *testing.T) {
	t.Parallel()

	c := Card{Primary: 9, Secondary: 2}
	low, high := c.Faces()
	assert.Equal(t, 2, low)
	assert.Equal(t, 9, high)
	assert.True(t, c.SameFaces(c.Flipped()))
	assert.True(t, c.HasFace(9))
	assert.False(t, c.HasFace(5))
	assert.Equal(t, "9/2", c.String())
}

func TestHand_FlipTwiceRestores(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 15).Draw(t, "n")
		hand := make(Hand, n)
		for i := range hand {
			p := rapid.IntRange(MinFace, MaxFace).Draw(t, "primary")
			s := rapid.IntRange(MinFace, MaxFace).Filter(func(v int) bool { return v != p }).Draw(t, "secondary")
			hand[i] = Card{Primary: p, Secondary: s}
		}
		original := hand.Clone()

		hand.Flip()
		for i := range hand {
			if hand[i].Primary != original[i].Secondary || hand[i].Secondary != original[i].Primary {
				t.Fatalf("card %d not flipped: %v -> %v", i, original[i], hand[i])
			}
		}

		hand.Flip()
		for i := range hand {
			if hand[i] != original[i] {
				t.Fatalf("card %d not restored: %v -> %v", i, original[i], hand[i])
			}
		}
	})
}

func TestHand_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	hand := Hand{{Primary: 1, Secondary: 2}, {Primary: 3, Secondary: 4}}
	clone := hand.Clone()
	clone.Flip()

	assert.Equal(t, 1, hand[0].Primary)
	assert.Equal(t, 2, clone[0].Primary)
	assert.NotNil(t, Hand(nil).Clone())
}
