package marks

import (
	"fmt"
	"reflect"
	"sync"
)

// maxNodeIndexes bounds the per-evaluator node index cache. Link marks
// under many panel instances index one node group per instance.
const maxNodeIndexes = 64

// nodeIndex maps node keys to the items of one node group.
type nodeIndex struct {
	keyProp *Property
	items   map[any]*Item
}

// linkGraph caches node indexes for a link evaluator. The link groups of
// every panel instance share it and may resolve concurrently.
type linkGraph struct {
	mu      sync.Mutex
	indexes map[*GroupItem]*nodeIndex
}

// index returns the key map of nodes, rebuilding it when the group changed
// shape or content in its last build or the key property changed.
func (lg *linkGraph) index(nodes *GroupItem, keyProp *Property) (map[any]*Item, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.indexes == nil {
		lg.indexes = make(map[*GroupItem]*nodeIndex)
	}
	ni := lg.indexes[nodes]
	if ni != nil && ni.keyProp == keyProp && !nodes.Dirty() && !nodes.Modified() {
		return ni.items, nil
	}
	if ni == nil && len(lg.indexes) >= maxNodeIndexes {
		clear(lg.indexes)
	}
	m := make(map[any]*Item, len(nodes.Items))
	for _, it := range nodes.Items {
		if it == nil || it.Dead() {
			continue
		}
		var key any = it.Index
		if keyProp != nil {
			key = keyProp.Object(it)
		}
		if err := comparableKey(key); err != nil {
			return nil, err
		}
		m[key] = it
	}
	lg.indexes[nodes] = &nodeIndex{keyProp: keyProp, items: m}
	return m, nil
}

func comparableKey(k any) error {
	if k == nil || reflect.TypeOf(k).Comparable() {
		return nil
	}
	return fmt.Errorf("node key %v of type %T is not comparable", k, k)
}

// nodeGroup resolves a sourceNodes or targetNodes binding for link group g.
// The binding may yield a *GroupItem, a *Mark whose group is looked up in
// g's panel instance, or nil for the link's prototype group.
func nodeGroup(g *GroupItem, p *Property) (*GroupItem, error) {
	if p == nil {
		return g.proto, nil
	}
	switch v := p.Object(&g.Item).(type) {
	case nil:
		return g.proto, nil
	case *GroupItem:
		return v, nil
	case *Mark:
		if g.panel == nil {
			return nil, nil
		}
		return g.panel.Layer(v), nil
	default:
		return nil, fmt.Errorf("link nodes: unsupported node source %T", v)
	}
}

// BuildGraph resolves the Source and Target items of every link in g.
// Links whose endpoints cannot be found get nil endpoints and are hidden by
// the default visibility rule.
func (ev *evaluator) BuildGraph(g *GroupItem) error {
	if ev.graph == nil {
		return nil
	}
	keys := ev.ps.Keys
	src, err := nodeGroup(g, keys.get("sourceNodes"))
	if err != nil {
		return err
	}
	tgt, err := nodeGroup(g, keys.get("targetNodes"))
	if err != nil {
		return err
	}
	var srcMap, tgtMap map[any]*Item
	if src != nil {
		if srcMap, err = ev.graph.index(src, keys.get("sourceNodeKey")); err != nil {
			return err
		}
	}
	if tgt != nil {
		if tgtMap, err = ev.graph.index(tgt, keys.get("targetNodeKey")); err != nil {
			return err
		}
	}

	sk, tk := keys.get("sourceKey"), keys.get("targetKey")
	for _, it := range g.Items {
		if it == nil {
			continue
		}
		it.Source = lookupNode(srcMap, sk, it)
		it.Target = lookupNode(tgtMap, tk, it)
	}
	return nil
}

func lookupNode(nodes map[any]*Item, keyProp *Property, link *Item) *Item {
	if nodes == nil || keyProp == nil {
		return nil
	}
	k := keyProp.Object(link)
	if comparableKey(k) != nil {
		return nil
	}
	return nodes[k]
}
