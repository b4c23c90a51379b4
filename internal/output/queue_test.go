package output

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_DrainPreservesOrder(t *testing.T) {
	q := NewQueue()
	q.AddLine("Starting...")
	q.AddLine("Running -sS on 127.0.0.1...")

	assert.Equal(t, []string{"Starting...", "Running -sS on 127.0.0.1..."}, q.Drain())
	assert.Empty(t, q.Drain())
}

func TestQueue_NextBlocksUntilLine(t *testing.T) {
	q := NewQueue()

	got := make(chan []string, 1)
	go func() {
		lines, err := q.Next(context.Background())
		if err == nil {
			got <- lines
		}
		close(got)
	}()

	select {
	case <-got:
		t.Fatal("Next returned before any line was added")
	case <-time.After(20 * time.Millisecond):
	}

	q.AddLine("Cycle done.")
	select {
	case lines := <-got:
		assert.Equal(t, []string{"Cycle done."}, lines)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake up")
	}
}

func TestQueue_NextHonoursContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue()
	q.AddLine("Stopping...")
	q.Close()
	q.Close()
	q.AddLine("dropped")

	lines, err := q.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Stopping..."}, lines)

	_, err = q.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestQueue_ConcurrentAppendLosesNothing(t *testing.T) {
	const writers, perWriter = 4, 250
	q := NewQueue()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				q.AddLine(fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}

	var received []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for len(received) < writers*perWriter {
			lines, err := q.Next(context.Background())
			if err != nil {
				return
			}
			received = append(received, lines...)
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		q.Close()
		<-done
		t.Fatalf("received %d of %d lines", len(received), writers*perWriter)
	}

	require.Len(t, received, writers*perWriter)

	// Per-writer order is preserved.
	next := make(map[string]int)
	for _, line := range received {
		var w, i int
		_, err := fmt.Sscanf(line, "w%d-%d", &w, &i)
		require.NoError(t, err)
		key := fmt.Sprint(w)
		assert.Equal(t, next[key], i, "writer %d out of order", w)
		next[key] = i + 1
	}
}
