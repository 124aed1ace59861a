package observability

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStats_TopOrdering(t *testing.T) {
	s := NewSessionStats()
	for i := 0; i < 3; i++ {
		s.RecordCommand("what_is", time.Millisecond, false)
	}
	s.RecordCommand("import", 10*time.Millisecond, false)
	s.RecordCommand("debug", time.Millisecond, false)
	s.RecordCommand("debug", time.Millisecond, true)

	top := s.Top(10)
	require.Len(t, top, 3)
	assert.Equal(t, "what_is", top[0].Command)
	assert.Equal(t, "debug", top[1].Command)
	assert.Equal(t, int64(1), top[1].Failures)
	assert.Equal(t, "import", top[2].Command)
	assert.Equal(t, 10*time.Millisecond, top[2].Average())

	assert.Len(t, s.Top(1), 1)
	assert.Empty(t, s.Top(0))
}

func TestSessionStats_TopReturnsCopies(t *testing.T) {
	s := NewSessionStats()
	s.RecordCommand("quit", 0, false)
	top := s.Top(1)
	top[0].Frequency = 99
	assert.Equal(t, int64(1), s.Top(1)[0].Frequency)
}

func TestSessionStats_Fetches(t *testing.T) {
	s := NewSessionStats()
	s.RecordFetch(FetchStore)
	s.RecordFetch(FetchCache)
	s.RecordFetch(FetchCache)
	s.RecordBloomSkip()

	cache, store := s.Fetches()
	assert.Equal(t, int64(2), cache)
	assert.Equal(t, int64(1), store)
	assert.Equal(t, int64(1), s.BloomSkips())
}

func TestSessionStats_Concurrent(t *testing.T) {
	s := NewSessionStats()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordCommand("what_is_at", time.Microsecond, false)
				s.RecordFetch(FetchCache)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), s.Top(1)[0].Frequency)
	cache, _ := s.Fetches()
	assert.Equal(t, int64(800), cache)
}

func TestSessionStats_Display(t *testing.T) {
	s := NewSessionStats()
	s.RecordCommand("what_is", 0, false)
	s.RecordFetch(FetchStore)

	var buf bytes.Buffer
	require.NoError(t, s.Display(&buf))
	assert.Contains(t, buf.String(), "Records from file: 1\n")
	assert.Contains(t, buf.String(), "what_is")
}
