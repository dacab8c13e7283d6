package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	t := start.Add(-step)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestAppendIdenticalPayloadsDiffer(t *testing.T) {
	l := NewLog(10, WithClock(steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)))
	payload := map[string]int{"births": 3}

	a, err := l.Append(EventGeneration, 1, payload)
	require.NoError(t, err)
	b, err := l.Append(EventGeneration, 1, payload)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Hash, b.Hash)
	assert.Equal(t, a.Hash, b.PrevHash)
	assert.Empty(t, a.PrevHash)
	assert.Equal(t, uint64(1), a.Seq)
	assert.Equal(t, uint64(2), b.Seq)
	assert.JSONEq(t, `{"births":3}`, string(b.Payload))
}

func TestHashMatchesDefinition(t *testing.T) {
	ts := time.Date(2024, 3, 2, 1, 0, 0, 5, time.UTC)
	l := NewLog(4, WithClock(func() time.Time { return ts }))
	e, err := l.Append(EventSeed, 0, map[string]string{"pattern": "block"})
	require.NoError(t, err)

	raw, _ := json.Marshal(map[string]string{"pattern": "block"})
	assert.Equal(t, Hash(EventSeed, raw, ts), e.Hash)
	assert.Len(t, e.Hash, 64)
}

func TestRetentionEvictsOldest(t *testing.T) {
	l := NewLog(3, WithClock(steppingClock(time.Unix(0, 0), time.Second)))
	for i := 0; i < 5; i++ {
		_, err := l.Append(EventGeneration, uint64(i+1), i)
		require.NoError(t, err)
	}
	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(3), entries[0].Generation)
	assert.Equal(t, uint64(5), entries[2].Generation)

	stats := l.Stats()
	assert.Equal(t, int64(2), stats.EvictedEntries)
	assert.Equal(t, entries[2].Hash, stats.LastHash)
	assert.NoError(t, l.Verify())
}

func TestVerifyDetectsTampering(t *testing.T) {
	l := NewLog(10, WithClock(steppingClock(time.Unix(100, 0), time.Second)))
	for i := 0; i < 3; i++ {
		_, err := l.Append(EventGeneration, uint64(i+1), map[string]int{"alive": i})
		require.NoError(t, err)
	}
	require.NoError(t, l.Verify())

	l.mu.Lock()
	items := l.entries.Items()
	items[1].Payload = json.RawMessage(`{"alive":99}`)
	for l.entries.Len() > 0 {
		l.entries.Pop()
	}
	for _, e := range items {
		l.entries.Push(e)
	}
	l.mu.Unlock()

	assert.ErrorIs(t, l.Verify(), ErrChainBroken)
}

func TestAppendRejectsUnencodablePayload(t *testing.T) {
	l := NewLog(1)
	_, err := l.Append(EventGeneration, 1, make(chan int))
	assert.Error(t, err)
	assert.Empty(t, l.Entries())
}

func TestStateChanges(t *testing.T) {
	l := NewLog(3)
	l.RecordChanges([]StateChange{
		{Generation: 1, X: 1, From: "DEAD", To: "SPAWNING"},
		{Generation: 2, X: 2, From: "ALIVE", To: "DYING"},
	})
	l.RecordChanges(nil)
	l.RecordChanges([]StateChange{
		{Generation: 2, X: 3, From: "ALIVE", To: "VALIDATED"},
		{Generation: 3, X: 4, From: "GHOST", To: "DEAD"},
	})

	all := l.StateChanges(0)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].X)
	assert.NotEmpty(t, all[0].ID)
	assert.Len(t, l.StateChanges(2), 2)
	assert.Equal(t, int64(1), l.Stats().EvictedChanges)
}
