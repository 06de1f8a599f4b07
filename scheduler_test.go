package marks

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsAndRemovesFinishedTasks(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	var runs atomic.Int32
	require.NoError(t, s.Add(NewTask("once", func(time.Time) time.Duration {
		runs.Add(1)
		return 0
	})))
	s.WaitOneCycle()
	assert.Equal(t, int32(1), runs.Load())
	assert.Nil(t, s.Lookup("once"))
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerRepeatsUntilDone(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	var runs atomic.Int32
	done := make(chan struct{})
	require.NoError(t, s.Add(NewTask("", func(time.Time) time.Duration {
		if runs.Add(1) == 3 {
			close(done)
			return -1
		}
		return time.Millisecond
	})))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not repeat")
	}
	assert.Equal(t, int32(3), runs.Load())
}

func TestSchedulerReplacesByID(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	idle := func(time.Time) time.Duration { return time.Hour }
	a := NewTask("job", idle)
	b := NewTask("job", idle)
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	s.WaitOneCycle()

	assert.Equal(t, 1, s.Len())
	assert.Same(t, b, s.Lookup("job"))

	assert.Same(t, b, s.Cancel("job"))
	assert.Nil(t, s.Cancel("job"))
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerAnonymousTasksCoexist(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	idle := func(time.Time) time.Duration { return time.Hour }
	a, b := NewTask("", idle), NewTask("", idle)
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	assert.Equal(t, 2, s.Len())

	s.CancelTask(a)
	assert.Equal(t, 1, s.Len())
	s.CancelTask(b)
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerPostQueueGating(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	var posts atomic.Int32
	post := NewTask("post", func(time.Time) time.Duration {
		posts.Add(1)
		return time.Second
	})
	require.NoError(t, s.AddPost(post))

	// nothing ran, so nothing is posted
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), posts.Load())

	require.NoError(t, s.Add(NewTask("", func(time.Time) time.Duration { return 0 })))
	require.Eventually(t, func() bool { return posts.Load() == 1 }, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), posts.Load())

	s.RemovePost(post)
	require.NoError(t, s.Add(NewTask("", func(time.Time) time.Duration { return 0 })))
	s.WaitOneCycle()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), posts.Load())
}

func TestSchedulerFinishedPostTaskRemoved(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	var posts atomic.Int32
	require.NoError(t, s.AddPost(NewTask("", func(time.Time) time.Duration {
		posts.Add(1)
		return 0
	})))
	for range 3 {
		require.NoError(t, s.Add(NewTask("", func(time.Time) time.Duration { return 0 })))
		s.WaitOneCycle()
	}
	require.Eventually(t, func() bool { return posts.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), posts.Load())
}

func TestSchedulerWaitOneCycle(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	// returns at once on an idle scheduler
	s.WaitOneCycle()

	var ran atomic.Bool
	require.NoError(t, s.Add(NewTask("", func(time.Time) time.Duration {
		time.Sleep(5 * time.Millisecond)
		ran.Store(true)
		return 0
	})))
	s.WaitOneCycle()
	assert.True(t, ran.Load())
}

func TestSchedulerGoroutineIdentity(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()
	assert.False(t, s.OnSchedulerGoroutine())

	inside := make(chan bool, 1)
	require.NoError(t, s.Add(NewTask("", func(time.Time) time.Duration {
		// must not deadlock when called from a task
		s.WaitOneCycle()
		inside <- s.OnSchedulerGoroutine()
		return 0
	})))
	select {
	case v := <-inside:
		assert.True(t, v)
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestSchedulerRecoversPanics(t *testing.T) {
	e := newTestEngine(t)
	s := e.Scheduler()

	require.NoError(t, s.Add(NewTask("bad", func(time.Time) time.Duration { panic("boom") })))
	s.WaitOneCycle()
	assert.Nil(t, s.Lookup("bad"))

	var ran atomic.Bool
	require.NoError(t, s.Add(NewTask("good", func(time.Time) time.Duration {
		ran.Store(true)
		return 0
	})))
	s.WaitOneCycle()
	assert.True(t, ran.Load())
}

func TestSchedulerUsesClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e := newTestEngine(t, WithClock(func() time.Time { return fixed }))

	got := make(chan time.Time, 1)
	require.NoError(t, e.Scheduler().Add(NewTask("", func(now time.Time) time.Duration {
		got <- now
		return 0
	})))
	assert.Equal(t, fixed, <-got)
}

func TestSchedulerClosed(t *testing.T) {
	e := NewEngine()
	s := e.Scheduler()
	require.NoError(t, s.Add(NewTask("idle", func(time.Time) time.Duration { return time.Hour })))
	e.Close()
	e.Close()

	assert.ErrorIs(t, s.Add(NewTask("", func(time.Time) time.Duration { return 0 })), ErrClosed)
	assert.ErrorIs(t, s.AddPost(NewTask("", func(time.Time) time.Duration { return 0 })), ErrClosed)
	s.WaitOneCycle()
}
