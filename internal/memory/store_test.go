package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUserKeepsLastCapInOrder(t *testing.T) {
	for _, n := range []int{1, 9, 10, 11, 12, 25} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := NewStore(Options{UserCap: 10})
			for i := 1; i <= n; i++ {
				s.RecordUser(7, UserEntry{
					Incoming: fmt.Sprintf("msg-%d", i),
					Outgoing: fmt.Sprintf("reply-%d", i),
				})
			}

			history := s.UserHistory(7)
			want := min(n, 10)
			require.Len(t, history, want)
			first := n - want + 1
			for i, e := range history {
				assert.Equal(t, fmt.Sprintf("msg-%d", first+i), e.Incoming)
				assert.Equal(t, fmt.Sprintf("reply-%d", first+i), e.Outgoing)
			}
		})
	}
}

func TestRecordUserTwelveExchangesStartsAtThird(t *testing.T) {
	s := NewStore(Options{UserCap: 10})
	for i := 1; i <= 12; i++ {
		s.RecordUser(7, UserEntry{Incoming: fmt.Sprintf("m%d", i), Outgoing: "ok"})
	}
	history := s.UserHistory(7)
	require.Len(t, history, 10)
	assert.Equal(t, "m3", history[0].Incoming)
	assert.Equal(t, "m12", history[9].Incoming)
}

func TestRecordGroupUsesGroupCap(t *testing.T) {
	s := NewStore(Options{UserCap: 2, GroupCap: 3})
	for i := 1; i <= 5; i++ {
		s.RecordGroup(-100, GroupEntry{SpeakerName: "Asha", Incoming: fmt.Sprintf("g%d", i), ChatTitle: "Friends"})
	}
	history := s.GroupHistory(-100)
	require.Len(t, history, 3)
	assert.Equal(t, "g3", history[0].Incoming)
	for _, e := range history {
		assert.Equal(t, ContextGroup, e.ContextLabel)
		assert.Equal(t, "Friends", e.ChatTitle)
	}
	assert.Empty(t, s.UserHistory(-100))
}

func TestDefaultsApplyForNonPositiveCaps(t *testing.T) {
	s := NewStore(Options{})
	assert.Equal(t, DefaultUserCap, s.UserCap())
	assert.Equal(t, DefaultGroupCap, s.GroupCap())
}

func TestHistoryIsACopy(t *testing.T) {
	s := NewStore(Options{UserCap: 3})
	s.RecordUser(1, UserEntry{Incoming: "a"})
	history := s.UserHistory(1)
	history[0].Incoming = "mutated"
	assert.Equal(t, "a", s.UserHistory(1)[0].Incoming)
}

func TestClearUserIsIdempotent(t *testing.T) {
	s := NewStore(Options{})
	s.ClearUser(5)
	s.RecordUser(5, UserEntry{Incoming: "hi"})
	s.ClearUser(5)
	s.ClearUser(5)
	assert.Equal(t, 0, s.UserCount(5))
	assert.Contains(t, s.RenderUserContext(5, "Asha"), "first conversation")
}

func TestConcurrentRecordsStayBounded(t *testing.T) {
	s := NewStore(Options{UserCap: 10})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.RecordUser(1, UserEntry{Incoming: fmt.Sprintf("%d-%d", w, i)})
				_ = s.RenderUserContext(1, "x")
			}
		}(w)
	}
	wg.Wait()
	assert.Len(t, s.UserHistory(1), 10)
	assert.Equal(t, map[int64]int{1: 10}, s.Counts())
}

func TestExchangeIDsAreUnique(t *testing.T) {
	s := NewStore(Options{})
	a := s.RecordUser(1, UserEntry{Incoming: "a"})
	b := s.RecordUser(1, UserEntry{Incoming: "b"})
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, strings.Contains(a.ID, " "))
}
