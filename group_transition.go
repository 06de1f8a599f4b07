package marks

import (
	"time"

	"github.com/phanxgames/marks/internal/parallel"
)

// groupParallelThreshold is the group size above which interpolation is
// split across the worker pool.
const groupParallelThreshold = 4000

// GroupTransition interpolates the animated items of one group from their
// from snapshot to their to snapshot.
type GroupTransition struct {
	group *GroupItem
	anims []Animator
	pool  *parallel.WorkerPool
	pause time.Duration
}

func newGroupTransition(g *GroupItem, anims []Animator, e *Engine) Stepper {
	gt := &GroupTransition{group: g, anims: anims, pause: defaultPause}
	if e != nil {
		gt.pool = e.pool
	}
	return gt
}

// Group returns the animated group.
func (gt *GroupTransition) Group() *GroupItem { return gt.group }

// Step implements Stepper.
func (gt *GroupTransition) Step(dt, dd time.Duration, ease Easing) time.Duration {
	n := len(gt.group.Items)
	workers := 1
	if gt.pool != nil && gt.pool.IsRunning() {
		workers = gt.pool.Workers()
	}
	if n <= groupParallelThreshold || workers < 2 {
		return gt.stepRange(0, n, dt, dd, ease)
	}

	block := 1 + n/workers
	results := make([]time.Duration, 0, n/block+1)
	var work []func()
	for start := 0; start < n; start += block {
		end := min(start+block, n)
		slot := len(results)
		results = append(results, 0)
		work = append(work, func() {
			results[slot] = gt.stepRange(start, end, dt, dd, ease)
		})
	}
	gt.pool.ExecuteAll(work)

	next := time.Duration(-1)
	for _, r := range results {
		next = minPositive(next, r)
	}
	return next
}

func (gt *GroupTransition) stepRange(start, end int, dt, dd time.Duration, ease Easing) time.Duration {
	next := time.Duration(-1)
	for i := start; i < end; i++ {
		it := gt.group.Items[i]
		if it == nil || it.shadow == nil {
			continue
		}
		next = minPositive(next, gt.interpolate(it, dt, dd, ease))
	}
	return next
}

// interpolate moves one item to its eased position at dt. Item delay shifts
// the item's start; item easing overrides the transition's. The final step
// commits the target state and retires exiting items.
func (gt *GroupTransition) interpolate(it *Item, dt, dd time.Duration, ease Easing) time.Duration {
	local := dt - time.Duration(it.Delay*float64(time.Second))
	var f float64
	if dd > 0 {
		f = float64(local) / float64(dd)
	} else {
		f = 1
	}
	switch {
	case f <= 0:
		f = 0
	case f >= 1:
		f = 1
	default:
		e := it.Ease
		if e == nil {
			e = ease
		}
		if e != nil {
			f = e(f)
		}
	}

	sh := it.shadow
	for _, a := range gt.anims {
		a(f, it, &sh.from, &sh.to)
	}
	it.SetDirty(true)

	if local < dd {
		return gt.pause
	}
	it.State = sh.to
	it.shadow = nil
	if it.Zombie() {
		it.set(flagDead, true)
	}
	return -1
}
