package marks

import "time"

// serialUpdater walks the mark tree depth-first on the calling goroutine.
type serialUpdater struct {
	engine *Engine
}

func (u *serialUpdater) update(s *Scene, p *Parallel, st *updateStats) error {
	t0 := time.Now()
	if err := u.build(s.Mark, nil, s.root, p != nil, st); err != nil {
		return err
	}
	st.build = time.Since(t0)

	s.fireUpdate()

	t0 = time.Now()
	err := u.evaluate(s.Mark, s.root, p, st)
	st.evaluate = time.Since(t0)
	return err
}

func (u *serialUpdater) build(m *Mark, proto *GroupItem, panel *Item, animate bool, st *updateStats) error {
	g, err := m.eval.Build(m, proto, panel, animate)
	if err != nil {
		return err
	}
	st.groups.Add(1)
	st.items.Add(int64(len(g.Items)))
	if err := buildGraph(m, g); err != nil {
		return err
	}

	children := m.Children()
	if len(children) == 0 {
		return nil
	}
	if g.typ == MarkPanel {
		for _, it := range g.Items {
			if !liveLayer(it) {
				continue
			}
			ensureLayers(it, m.panelSize)
			for _, c := range children {
				if err := u.build(c, nil, it, animate, st); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, c := range children {
		if err := u.build(c, g, panel, animate, st); err != nil {
			return err
		}
	}
	return nil
}

func (u *serialUpdater) evaluate(m *Mark, panel *Item, p *Parallel, st *updateStats) error {
	g := layerOf(m, panel)
	if g == nil {
		return nil
	}
	if _, err := m.eval.Evaluate(g, 0, len(g.Items), p != nil); err != nil {
		return err
	}
	if p != nil {
		if t := m.eval.Transition(g); t != nil {
			p.Add(t)
			st.transitions.Add(1)
		}
	}

	children := m.Children()
	if g.typ == MarkPanel {
		for _, it := range g.Items {
			if !liveLayer(it) {
				continue
			}
			for _, c := range children {
				if err := u.evaluate(c, it, p, st); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, c := range children {
		if err := u.evaluate(c, panel, p, st); err != nil {
			return err
		}
	}
	return nil
}
