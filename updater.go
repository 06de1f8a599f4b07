package marks

import (
	"fmt"
	"runtime/debug"
)

// updater runs one update pass over a scene: build every group, fire the
// scene's update event, then evaluate every group. p collects the group
// transitions of an animated pass and is nil otherwise.
type updater interface {
	update(s *Scene, p *Parallel, st *updateStats) error
}

// bindTree resolves the properties of m and its descendants and rebuilds
// each evaluator whose property set changed.
func (e *Engine) bindTree(m *Mark, st *updateStats) error {
	ps := m.bind()
	if ps.Dirty || m.eval == nil {
		ev, err := newEvaluator(e, m, ps)
		if err != nil {
			return err
		}
		m.eval = ev
		st.rebuilt.Add(1)
	}
	for _, c := range m.Children() {
		if err := e.bindTree(c, st); err != nil {
			return err
		}
	}
	return nil
}

// graphBuilder is implemented by evaluators of link marks.
type graphBuilder interface {
	BuildGraph(g *GroupItem) error
}

func buildGraph(m *Mark, g *GroupItem) error {
	if g.typ != MarkLink {
		return nil
	}
	if gb, ok := m.eval.(graphBuilder); ok {
		return gb.BuildGraph(g)
	}
	return nil
}

// liveLayer reports whether a panel item's child marks are built and
// evaluated.
func liveLayer(it *Item) bool {
	return it != nil && it.Visible && !it.Dead()
}

// ensureLayers sizes a panel item's layers before its children are built,
// so concurrent child builds only write their own slot.
func ensureLayers(it *Item, n int) {
	for len(it.Layers) < n {
		it.Layers = append(it.Layers, nil)
	}
}

// layerOf returns the group m produced under panel, or nil.
func layerOf(m *Mark, panel *Item) *GroupItem {
	g := panel.Layer(m)
	if g == nil || g.mark != m {
		return nil
	}
	return g
}

// protect runs fn, converting a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("marks: panic during update: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
