package marks

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// parallelUpdater builds the mark tree in waves and evaluates groups in
// blocks on the worker pool.
//
// A wave holds every group whose panel items are final: a panel's child
// marks are queued for the next wave only after the panel's own build has
// returned and its items' layers are sized. Evaluation splits each group
// into blocks; the block that completes last recurses into the children
// and registers the group's transition, so that happens exactly once.
type parallelUpdater struct {
	engine *Engine
}

type buildJob struct {
	mark  *Mark
	proto *GroupItem
	panel *Item
}

func (u *parallelUpdater) update(s *Scene, p *Parallel, st *updateStats) error {
	animate := p != nil

	t0 := time.Now()
	links, err := u.build(buildJob{mark: s.Mark, panel: s.root}, animate, st)
	if err != nil {
		return err
	}
	if err := u.buildGraphs(links); err != nil {
		return err
	}
	st.build = time.Since(t0)

	s.fireUpdate()

	t0 = time.Now()
	ep := &evalPass{engine: u.engine, parallel: p, animate: animate, st: st, deferLinks: true}
	ep.evaluate(s.Mark, s.root)
	ep.wg.Wait()

	// Link endpoints read node properties, so links run once every other
	// group has been evaluated.
	deferred := ep.links
	ep.links, ep.deferLinks = nil, false
	for _, l := range deferred {
		ep.evaluate(l.mark, l.panel)
	}
	ep.wg.Wait()
	st.evaluate = time.Since(t0)
	return ep.err
}

// build runs build waves until no children remain and returns the link
// groups whose graphs still need resolving.
func (u *parallelUpdater) build(root buildJob, animate bool, st *updateStats) ([]*GroupItem, error) {
	var (
		mu    sync.Mutex
		links []*GroupItem
	)
	wave := []buildJob{root}
	for len(wave) > 0 {
		var next []buildJob
		var eg errgroup.Group
		eg.SetLimit(u.engine.pool.Workers())
		for _, job := range wave {
			eg.Go(func() error {
				return protect(func() error {
					g, err := job.mark.eval.Build(job.mark, job.proto, job.panel, animate)
					if err != nil {
						return err
					}
					st.groups.Add(1)
					st.items.Add(int64(len(g.Items)))

					var out []buildJob
					children := job.mark.Children()
					if g.typ == MarkPanel {
						for _, it := range g.Items {
							if !liveLayer(it) || len(children) == 0 {
								continue
							}
							ensureLayers(it, job.mark.panelSize)
							for _, c := range children {
								out = append(out, buildJob{mark: c, panel: it})
							}
						}
					} else {
						for _, c := range children {
							out = append(out, buildJob{mark: c, proto: g, panel: job.panel})
						}
					}

					mu.Lock()
					next = append(next, out...)
					if g.typ == MarkLink {
						links = append(links, g)
					}
					mu.Unlock()
					return nil
				})
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		wave = next
	}
	return links, nil
}

// buildGraphs resolves link endpoints once every node group is built.
func (u *parallelUpdater) buildGraphs(links []*GroupItem) error {
	var eg errgroup.Group
	eg.SetLimit(u.engine.pool.Workers())
	for _, g := range links {
		eg.Go(func() error {
			return protect(func() error { return buildGraph(g.mark, g) })
		})
	}
	return eg.Wait()
}

// evalPass tracks the outstanding evaluation blocks of one update.
type evalPass struct {
	engine   *Engine
	parallel *Parallel
	animate  bool
	st       *updateStats

	wg     sync.WaitGroup
	failed atomic.Bool

	deferLinks bool
	linksMu    sync.Mutex
	links      []buildJob

	once sync.Once
	err  error
}

func (ep *evalPass) fail(err error) {
	ep.once.Do(func() { ep.err = err })
	ep.failed.Store(true)
}

// evaluate queues the blocks of m's group under panel.
func (ep *evalPass) evaluate(m *Mark, panel *Item) {
	g := layerOf(m, panel)
	if g == nil || ep.failed.Load() {
		return
	}
	if ep.deferLinks && g.typ == MarkLink {
		ep.linksMu.Lock()
		ep.links = append(ep.links, buildJob{mark: m, panel: panel})
		ep.linksMu.Unlock()
		return
	}
	ev := m.eval
	pool := ep.engine.pool

	n := len(g.Items)
	block := 1 + n/pool.Workers()
	tasks := max(1, (n+block-1)/block)
	var count atomic.Int32
	for i := range tasks {
		start, end := i*block, min((i+1)*block, n)
		ep.wg.Add(1)
		pool.Submit(func() {
			defer ep.wg.Done()
			err := protect(func() error {
				_, err := ev.Evaluate(g, start, end, ep.animate)
				return err
			})
			if err != nil {
				ep.fail(err)
			}
			if int(count.Add(1)) < tasks || ep.failed.Load() {
				return
			}
			if err := protect(func() error { ep.finish(m, g, ev); return nil }); err != nil {
				ep.fail(err)
			}
		})
	}
}

// finish runs after every block of g has been evaluated.
func (ep *evalPass) finish(m *Mark, g *GroupItem, ev Evaluator) {
	if ep.parallel != nil {
		if t := ev.Transition(g); t != nil {
			ep.parallel.Add(t)
			ep.st.transitions.Add(1)
		}
	}
	children := m.Children()
	if g.typ == MarkPanel {
		for _, it := range g.Items {
			if !liveLayer(it) {
				continue
			}
			for _, c := range children {
				ep.evaluate(c, it)
			}
		}
		return
	}
	for _, c := range children {
		ep.evaluate(c, g.panel)
	}
}
