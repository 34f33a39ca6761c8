package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func att(name string) Attachment {
	return Attachment{Name: name, MediaType: "image/png", Data: []byte(name)}
}

func counter(n *int) Releaser {
	return ReleaseFunc(func() { *n++ })
}

func TestSetAddTruncatesToCapacity(t *testing.T) {
	var released int
	s := NewSet(2)

	accepted := s.Add(
		[]Attachment{att("a"), att("b"), att("c")},
		[]Releaser{counter(&released), counter(&released), counter(&released)},
	)
	assert.Equal(t, 2, accepted)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, released, "rejected previews must be released")

	accepted = s.Add([]Attachment{att("d")}, []Releaser{counter(&released)})
	assert.Equal(t, 0, accepted, "a full set accepts nothing")
	assert.Equal(t, 2, released)
}

func TestSetAddUnbounded(t *testing.T) {
	s := NewSet(0)
	for i := 0; i < 10; i++ {
		s.Add([]Attachment{att("x")}, nil)
	}
	assert.Equal(t, 10, s.Len())
}

func TestSetRemoveShiftsDisplayIndex(t *testing.T) {
	s := NewSet(0)
	s.Add([]Attachment{att("a"), att("b"), att("c")}, nil)
	s.SetDisplayIndex(2)

	require.NoError(t, s.Remove(0))
	assert.Equal(t, 1, s.DisplayIndex(), "removing below the displayed index shifts it down")

	require.NoError(t, s.Remove(1))
	assert.Equal(t, 0, s.DisplayIndex(), "removing the displayed last item clamps to the new last")

	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, s.DisplayIndex(), "an empty set displays index 0")

	require.Error(t, s.Remove(0))
}

func TestSetRemoveReleasesPreview(t *testing.T) {
	var released int
	s := NewSet(0)
	s.Add([]Attachment{att("a")}, []Releaser{counter(&released)})

	require.NoError(t, s.Remove(0))
	assert.Equal(t, 1, released)
}

func TestSetReorderKeepsPairsInLockstep(t *testing.T) {
	names := func(s *Set) []string {
		var out []string
		for _, a := range s.Items() {
			out = append(out, a.Name)
		}
		return out
	}

	for from := 0; from < 3; from++ {
		for to := 0; to < 3; to++ {
			s := NewSet(0)
			var previewOrder []string
			mk := func(name string) Releaser {
				return ReleaseFunc(func() { previewOrder = append(previewOrder, name) })
			}
			s.Add(
				[]Attachment{att("a"), att("b"), att("c")},
				[]Releaser{mk("a"), mk("b"), mk("c")},
			)

			require.NoError(t, s.Reorder(from, to))
			got := names(s)

			s.Clear()
			assert.Equal(t, got, previewOrder,
				"previews must follow attachments for reorder (%d,%d)", from, to)
		}
	}
}

func TestSetReorderOutOfRange(t *testing.T) {
	s := NewSet(0)
	s.Add([]Attachment{att("a")}, nil)
	require.Error(t, s.Reorder(0, 1))
	require.Error(t, s.Reorder(-1, 0))
}

func TestSetTakeTransfersOwnership(t *testing.T) {
	var released int
	s := NewSet(0)
	s.Add([]Attachment{att("a"), att("b")}, []Releaser{counter(&released), counter(&released)})
	s.SetDisplayIndex(1)

	items, previews := s.Take()
	assert.Len(t, items, 2)
	assert.Len(t, previews, 2)
	assert.Equal(t, 0, released, "take must not release")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.DisplayIndex())
}

func TestSetClearReleasesAll(t *testing.T) {
	var released int
	s := NewSet(0)
	s.Add([]Attachment{att("a"), att("b")}, []Releaser{counter(&released), counter(&released)})

	s.Clear()
	assert.Equal(t, 2, released)
	assert.Equal(t, 0, s.Len())
}
