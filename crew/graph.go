package crew

import "fmt"

// Graph is the validated dependency graph of a task list.
// Edges point from a context task to the task consuming its output.
type Graph struct {
	tasks    []*Task
	index    map[string]int
	upstream map[string][]string
	order    []*Task
}

// NewGraph validates tasks and computes their execution order
func NewGraph(tasks []*Task) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}
	g := &Graph{
		tasks:    tasks,
		index:    make(map[string]int, len(tasks)),
		upstream: make(map[string][]string, len(tasks)),
	}
	for idx, t := range tasks {
		if t == nil {
			return nil, ErrNilTask
		}
		if t.Name == "" {
			return nil, fmt.Errorf("%w: task #%d", ErrInvalidTaskName, idx)
		}
		if _, found := g.index[t.Name]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name)
		}
		g.index[t.Name] = idx
	}
	for _, t := range tasks {
		for _, dep := range t.Context {
			if dep == nil {
				return nil, fmt.Errorf("%w: nil context of %s", ErrUnknownTask, t.Name)
			}
			if dep == t || dep.Name == t.Name {
				return nil, fmt.Errorf("%w: %s", ErrSelfReference, t.Name)
			}
			idx, found := g.index[dep.Name]
			if !found || tasks[idx] != dep {
				return nil, fmt.Errorf("%w: %s (context of %s)", ErrUnknownTask, dep.Name, t.Name)
			}
			g.upstream[t.Name] = append(g.upstream[t.Name], dep.Name)
		}
	}
	if cycle := g.findCycle(); cycle != "" {
		return nil, fmt.Errorf("%w: through %s", ErrCyclicDependency, cycle)
	}
	for idx, t := range tasks {
		for _, dep := range g.upstream[t.Name] {
			if g.index[dep] > idx {
				return nil, fmt.Errorf("%w: %s is listed after %s", ErrForwardReference, dep, t.Name)
			}
		}
	}
	g.order = g.topologicalOrder()
	return g, nil
}

// findCycle detects a cycle using DFS with coloring and returns a task on it
func (g *Graph) findCycle() string {
	const (
		white = 0 // unvisited
		gray  = 1 // visiting
		black = 2 // visited
	)
	color := make(map[string]int, len(g.tasks))
	var dfs func(string) string
	dfs = func(u string) string {
		color[u] = gray
		for _, v := range g.upstream[u] {
			if color[v] == gray {
				return v
			}
			if color[v] == white {
				if found := dfs(v); found != "" {
					return found
				}
			}
		}
		color[u] = black
		return ""
	}
	for _, t := range g.tasks {
		if color[t.Name] == white {
			if found := dfs(t.Name); found != "" {
				return found
			}
		}
	}
	return ""
}

// topologicalOrder returns the tasks with every task after its context tasks,
// preferring list order among ready tasks
func (g *Graph) topologicalOrder() []*Task {
	done := make(map[string]bool, len(g.tasks))
	ret := make([]*Task, 0, len(g.tasks))
	for len(ret) < len(g.tasks) {
		for _, t := range g.tasks {
			if done[t.Name] {
				continue
			}
			ready := true
			for _, dep := range g.upstream[t.Name] {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				done[t.Name] = true
				ret = append(ret, t)
				break
			}
		}
	}
	return ret
}

// Order returns the execution order
func (g *Graph) Order() []*Task {
	return append([]*Task(nil), g.order...)
}

// Upstream returns the names of the context tasks of name
func (g *Graph) Upstream(name string) []string {
	return append([]string(nil), g.upstream[name]...)
}

// Position returns the index of name in the execution order, -1 when unknown
func (g *Graph) Position(name string) int {
	for idx, t := range g.order {
		if t.Name == name {
			return idx
		}
	}
	return -1
}
