// Package export turns an export scope into an ordered ticket list and
// materializes it as a directory tree.
package export

import (
	"context"
	"fmt"
	"sort"

	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

// Source is the remote side of an export: the three fetch operations the
// resolver needs. *jira.Client satisfies it.
type Source interface {
	FetchProject(ctx context.Context, projectKey string) ([]ticket.Ticket, error)
	FetchTicket(ctx context.Context, key string) (ticket.Ticket, error)
	FetchChildren(ctx context.Context, key string) ([]ticket.Ticket, error)
}

// Resolve produces the ordered set of tickets the scope covers. A parent
// always precedes its children in the result, so the writer can place each
// ticket under its parent's directory.
func Resolve(ctx context.Context, src Source, scope ticket.Scope) ([]ticket.Ticket, error) {
	if scope.Whole() {
		all, err := src.FetchProject(ctx, scope.Project)
		if err != nil {
			return nil, fmt.Errorf("fetching project %s: %w", scope.Project, err)
		}
		return orderHierarchy(all), nil
	}

	root, err := src.FetchTicket(ctx, scope.Key)
	if err != nil {
		return nil, err
	}
	out := []ticket.Ticket{root}
	if !scope.Recursive {
		return out, nil
	}

	visited := map[string]bool{root.Key: true}
	if err := appendDescendants(ctx, src, root.Key, visited, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// appendDescendants walks a ticket's descendants depth-first. The visited
// set guards against cycles and against the same child appearing in more
// than one paginated response.
func appendDescendants(ctx context.Context, src Source, key string, visited map[string]bool, out *[]ticket.Ticket) error {
	children, err := src.FetchChildren(ctx, key)
	if err != nil {
		return fmt.Errorf("fetching children of %s: %w", key, err)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Key < children[j].Key })

	for _, child := range children {
		if visited[child.Key] {
			continue
		}
		visited[child.Key] = true
		*out = append(*out, child)
		if err := appendDescendants(ctx, src, child.Key, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// orderHierarchy sorts a project's tickets depth-first so every parent
// precedes its children. A ticket whose parent is missing from the set
// (e.g. the parent lives in another project) is treated as top-level.
// Children are visited in ascending key order so output is stable.
func orderHierarchy(all []ticket.Ticket) []ticket.Ticket {
	byKey := make(map[string]ticket.Ticket, len(all))
	keys := make([]string, 0, len(all))
	for _, t := range all {
		if _, seen := byKey[t.Key]; seen {
			continue
		}
		byKey[t.Key] = t
		keys = append(keys, t.Key)
	}

	children := make(map[string][]string)
	var roots []string
	for _, key := range keys {
		parent := byKey[key].ParentKey
		if parent == "" || parent == key {
			roots = append(roots, key)
			continue
		}
		if _, ok := byKey[parent]; !ok {
			roots = append(roots, key)
			continue
		}
		children[parent] = append(children[parent], key)
	}

	sort.Strings(roots)
	for _, c := range children {
		sort.Strings(c)
	}

	out := make([]ticket.Ticket, 0, len(keys))
	visited := make(map[string]bool, len(keys))
	var walk func(key string)
	walk = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		out = append(out, byKey[key])
		for _, child := range children[key] {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	// Anything still unvisited is part of a parent cycle; emit it anyway
	// so no ticket is silently dropped.
	for _, key := range keys {
		walk(key)
	}
	return out
}
