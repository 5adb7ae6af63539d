package planner

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/state"
)

// Default bounds for the search.
const (
	// DefaultMaxAlternatives caps retained rejected candidates per
	// decision point.
	DefaultMaxAlternatives = 3

	// DefaultMaxExpansions bounds the search so a miswired catalog can
	// never spin forever.
	DefaultMaxExpansions = 10000
)

// Search plans action sequences with best-first search ordered by
// g + heuristic. Ties break by lower catalog index, then lexicographic
// instance ID, then insertion order, so identical inputs always yield the
// identical plan.
type Search struct {
	cat       *catalog.Catalog
	heuristic Heuristic

	// MaxAlternatives caps the rejected candidates kept per step.
	MaxAlternatives int

	// MaxExpansions bounds node expansions before reporting failure.
	MaxExpansions int
}

// NewSearch builds a planner over the catalog with the given weight and
// cost tables.
func NewSearch(cat *catalog.Catalog, weights config.Weights) *Search {
	return &Search{
		cat:             cat,
		heuristic:       NewHeuristic(weights, cat.Costs()),
		MaxAlternatives: DefaultMaxAlternatives,
		MaxExpansions:   DefaultMaxExpansions,
	}
}

type node struct {
	st     state.RepoState
	key    string
	g      float64
	f      float64
	parent *node
	via    *catalog.Instance
	seq    int
	index  int
}

type frontier []*node

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(a, b int) bool {
	if f[a].f != f[b].f {
		return f[a].f < f[b].f
	}
	ai, bi := tieIndex(f[a]), tieIndex(f[b])
	if ai != bi {
		return ai < bi
	}
	aid, bid := tieID(f[a]), tieID(f[b])
	if aid != bid {
		return aid < bid
	}
	return f[a].seq < f[b].seq
}

func tieIndex(n *node) int {
	if n.via == nil {
		return -1
	}
	return n.via.Index
}

func tieID(n *node) string {
	if n.via == nil {
		return ""
	}
	return n.via.ID()
}

func (f frontier) Swap(a, b int) {
	f[a], f[b] = f[b], f[a]
	f[a].index = a
	f[b].index = b
}

func (f *frontier) Push(x any) {
	n := x.(*node)
	n.index = len(*f)
	*f = append(*f, n)
}

func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

// Plan searches from start to the first popped state satisfying the goal.
// A *PlanningError is returned when the frontier empties or the expansion
// bound is hit before the goal is reached.
func (s *Search) Plan(start state.RepoState, goal state.GoalSpec) (*Plan, error) {
	startNote := s.heuristic.Describe(start, goal)

	if goal.Satisfied(start) {
		return &Plan{
			Goal:  goal,
			Start: start,
			Notes: []string{"goal already satisfied", startNote},
		}, nil
	}

	open := &frontier{}
	heap.Init(open)
	seq := 0
	push := func(n *node) {
		n.seq = seq
		seq++
		heap.Push(open, n)
	}

	root := &node{st: start, key: start.Key(), g: 0, f: s.heuristic.Estimate(start, goal)}
	push(root)

	// closed holds the lowest g each state was finalized with.
	closed := make(map[string]float64)
	expanded := 0
	best := root

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if finalized, ok := closed[current.key]; ok && finalized <= current.g {
			continue
		}
		closed[current.key] = current.g

		if goal.Satisfied(current.st) {
			return s.reconstruct(current, start, goal, startNote, expanded), nil
		}

		if current.f-current.g < best.f-best.g {
			best = current
		}
		if expanded >= s.MaxExpansions {
			break
		}
		expanded++

		for _, inst := range s.cat.Instances(current.st, goal) {
			inst := inst
			successor := inst.Apply(current.st)
			key := successor.Key()
			g := current.g + inst.Cost
			if finalized, ok := closed[key]; ok && finalized <= g {
				continue
			}
			push(&node{
				st:     successor,
				key:    key,
				g:      g,
				f:      g + s.heuristic.Estimate(successor, goal),
				parent: current,
				via:    &inst,
			})
		}
	}

	return nil, &PlanningError{Goal: goal, BestState: best.st, Expanded: expanded}
}

// reconstruct walks parent links back to the start and rebuilds, per
// decision point, the capped list of rejected alternatives.
func (s *Search) reconstruct(goalNode *node, start state.RepoState, goal state.GoalSpec, startNote string, expanded int) *Plan {
	var chain []*node
	for n := goalNode; n.via != nil; n = n.parent {
		chain = append(chain, n)
	}
	// Reverse into plan order.
	for left, right := 0, len(chain)-1; left < right; left, right = left+1, right-1 {
		chain[left], chain[right] = chain[right], chain[left]
	}

	plan := &Plan{Goal: goal, Start: start}
	for _, n := range chain {
		step := Step{
			Action:       *n.via,
			Predicted:    n.st,
			Priority:     n.f,
			Alternatives: s.alternatives(n.parent, *n.via, goal),
		}
		plan.Steps = append(plan.Steps, step)
		plan.TotalCost += n.via.Cost
	}
	plan.Notes = append(plan.Notes,
		startNote,
		fmt.Sprintf("expanded %d states for a %d-step plan", expanded, len(plan.Steps)),
	)
	return plan
}

func (s *Search) alternatives(parent *node, chosen catalog.Instance, goal state.GoalSpec) []Alternative {
	var all []Alternative
	for _, inst := range s.cat.Instances(parent.st, goal) {
		if inst.ID() == chosen.ID() {
			continue
		}
		successor := inst.Apply(parent.st)
		g := parent.g + inst.Cost
		all = append(all, Alternative{
			Action:   inst,
			Priority: g + s.heuristic.Estimate(successor, goal),
		})
	}
	sort.SliceStable(all, func(a, b int) bool {
		if all[a].Priority != all[b].Priority {
			return all[a].Priority < all[b].Priority
		}
		return all[a].Action.ID() < all[b].Action.ID()
	})
	if len(all) > s.MaxAlternatives {
		all = all[:s.MaxAlternatives]
	}
	return all
}
