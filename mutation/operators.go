package mutation

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/pthm-cable/bodygraph/body"
)

// shuffledNodes returns the live node ids in random order.
func (m *Mutator) shuffledNodes(g *body.Graph) []body.NodeID {
	ids := g.Order()
	m.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// addModule grows a new module on a random free socket.
func (m *Mutator) addModule(g *body.Graph) (string, error) {
	free := g.FreeSockets()
	m.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, ref := range free {
		keys := m.catalog.Candidates(ref.Point)
		if len(keys) == 0 {
			continue
		}
		key := keys[m.rng.IntN(len(keys))]
		mod, err := m.catalog.Create(key, body.Params{SizeScale: m.cfg.NewModuleScale})
		if err != nil {
			return "", err
		}
		id, err := g.AddModule(ref.Node, ref.Point.ID, mod)
		if err != nil {
			continue
		}
		return fmt.Sprintf("grew %s as node %d on %d/%s", key, id, ref.Node, ref.Point.ID), nil
	}
	return "", errors.New("no free socket accepts any catalog module")
}

// removeSubtree drops a random node and its descendants. The root refuses
// removal, in which case another target is tried.
func (m *Mutator) removeSubtree(g *body.Graph) (string, error) {
	for _, id := range m.shuffledNodes(g) {
		mod, _ := g.Module(id)
		err := g.RemoveModule(id)
		if errors.Is(err, body.ErrStructural) {
			continue
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("removed %s subtree at node %d", mod.Key, id), nil
	}
	return "", errors.New("no removable node")
}

// scaleModule changes the size scale of a random module.
func (m *Mutator) scaleModule(g *body.Graph) (string, error) {
	for _, id := range m.shuffledNodes(g) {
		mod, _ := g.Module(id)
		params := mod.Params.Clone()
		old := params.SizeScale
		if old == 0 {
			old = 1
		}
		factor := 1 + m.cfg.ScaleDelta*(2*m.rng.Float64()-1)
		params.SizeScale = math.Round(max(m.cfg.MinScale, old*factor)*1000) / 1000
		if params.SizeScale == old {
			continue
		}
		next, err := m.catalog.Create(mod.Key, params)
		if err != nil {
			return "", err
		}
		if err := g.ReplaceModule(id, next); err != nil {
			continue
		}
		return fmt.Sprintf("scaled %s at node %d from %.3f to %.3f", mod.Key, id, old, params.SizeScale), nil
	}
	return "", errors.New("no module could be scaled")
}

// swapMaterial changes a random non-root module to another material its
// socket accepts.
func (m *Mutator) swapMaterial(g *body.Graph) (string, error) {
	for _, id := range m.shuffledNodes(g) {
		n, _ := g.Node(id)
		if n.Parent == body.NoNode {
			continue
		}
		parent, _ := g.Module(n.Parent)
		point, _ := parent.Socket(n.Socket)
		options := slices.DeleteFunc(slices.Clone(point.Materials), func(s string) bool { return s == n.Module.Material })
		if len(options) == 0 {
			continue
		}
		params := n.Module.Params.Clone()
		params.Material = options[m.rng.IntN(len(options))]
		next, err := m.catalog.Create(n.Module.Key, params)
		if err != nil {
			return "", err
		}
		if err := g.ReplaceModule(id, next); err != nil {
			continue
		}
		return fmt.Sprintf("changed %s at node %d from %s to %s", n.Module.Key, id, n.Module.Material, params.Material), nil
	}
	return "", errors.New("no module has an alternative material")
}

// reattach moves a random non-root subtree onto another free socket that
// accepts it. Sockets inside the moved subtree are never candidates.
func (m *Mutator) reattach(g *body.Graph) (string, error) {
	free := g.FreeSockets()
	m.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, id := range m.shuffledNodes(g) {
		n, _ := g.Node(id)
		if n.Parent == body.NoNode {
			continue
		}
		from := g.Depth(id)
		for _, ref := range free {
			if ref.Node == id || slices.Contains(g.Ancestors(ref.Node), id) {
				continue
			}
			if !body.CanAccept(ref.Point, n.Module) {
				continue
			}
			if err := g.MoveModule(id, ref.Node, ref.Point.ID); err != nil {
				continue
			}
			return fmt.Sprintf("moved %s at node %d from depth %d to %d/%s (depth %d)",
				n.Module.Key, id, from, ref.Node, ref.Point.ID, g.Depth(id)), nil
		}
	}
	return "", errors.New("no subtree fits another free socket")
}
