package export

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dt-pm-tools/ground-control/internal/jira"
	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

type fakeSource struct {
	project  []ticket.Ticket
	tickets  map[string]ticket.Ticket
	children map[string][]ticket.Ticket
}

func (f *fakeSource) FetchProject(_ context.Context, _ string) ([]ticket.Ticket, error) {
	return f.project, nil
}

func (f *fakeSource) FetchTicket(_ context.Context, key string) (ticket.Ticket, error) {
	t, ok := f.tickets[key]
	if !ok {
		return ticket.Ticket{}, fmt.Errorf("fetching %s: %w", key, jira.ErrNotFound)
	}
	return t, nil
}

func (f *fakeSource) FetchChildren(_ context.Context, key string) ([]ticket.Ticket, error) {
	return f.children[key], nil
}

func tk(key, typ, parent string) ticket.Ticket {
	return ticket.Ticket{Key: key, Type: typ, Summary: "Summary of " + key, ParentKey: parent}
}

func keysOf(tickets []ticket.Ticket) []string {
	keys := make([]string, len(tickets))
	for i, t := range tickets {
		keys[i] = t.Key
	}
	return keys
}

func TestResolveWholeProjectParentBeforeChild(t *testing.T) {
	src := &fakeSource{project: []ticket.Ticket{
		// Deliberately out of hierarchical order.
		tk("DEMO-3", "Story", "DEMO-2"),
		tk("DEMO-1", "Initiative", ""),
		tk("DEMO-2", "Epic", "DEMO-1"),
		tk("DEMO-4", "Epic", "DEMO-1"),
	}}

	got, err := Resolve(context.Background(), src, ticket.Scope{Project: "DEMO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEMO-1", "DEMO-2", "DEMO-3", "DEMO-4"}, keysOf(got))
}

func TestResolveWholeProjectOrphanIsTopLevel(t *testing.T) {
	src := &fakeSource{project: []ticket.Ticket{
		tk("DEMO-5", "Story", "OTHER-9"), // parent outside project scope
		tk("DEMO-1", "Initiative", ""),
	}}

	got, err := Resolve(context.Background(), src, ticket.Scope{Project: "DEMO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEMO-1", "DEMO-5"}, keysOf(got))
}

func TestResolveWholeProjectDeduplicates(t *testing.T) {
	src := &fakeSource{project: []ticket.Ticket{
		tk("DEMO-1", "Initiative", ""),
		tk("DEMO-2", "Epic", "DEMO-1"),
		tk("DEMO-2", "Epic", "DEMO-1"), // duplicate across pages
	}}

	got, err := Resolve(context.Background(), src, ticket.Scope{Project: "DEMO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEMO-1", "DEMO-2"}, keysOf(got))
}

func TestResolveWholeProjectCycleTerminates(t *testing.T) {
	src := &fakeSource{project: []ticket.Ticket{
		tk("DEMO-1", "Epic", "DEMO-2"),
		tk("DEMO-2", "Epic", "DEMO-1"),
		tk("DEMO-3", "Initiative", ""),
	}}

	got, err := Resolve(context.Background(), src, ticket.Scope{Project: "DEMO"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"DEMO-1", "DEMO-2", "DEMO-3"}, keysOf(got))
	assert.Len(t, got, 3, "cycle members must be emitted exactly once")
}

func TestResolveSingleTicket(t *testing.T) {
	src := &fakeSource{
		tickets:  map[string]ticket.Ticket{"DEMO-2": tk("DEMO-2", "Epic", "DEMO-1")},
		children: map[string][]ticket.Ticket{"DEMO-2": {tk("DEMO-3", "Story", "DEMO-2")}},
	}

	got, err := Resolve(context.Background(), src, ticket.Scope{Key: "DEMO-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEMO-2"}, keysOf(got), "non-recursive export emits exactly one ticket")
}

func TestResolveSingleTicketNotFound(t *testing.T) {
	src := &fakeSource{tickets: map[string]ticket.Ticket{}}

	_, err := Resolve(context.Background(), src, ticket.Scope{Key: "DEMO-2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, jira.ErrNotFound)
}

func TestResolveRecursive(t *testing.T) {
	src := &fakeSource{
		tickets: map[string]ticket.Ticket{"DEMO-1": tk("DEMO-1", "Initiative", "")},
		children: map[string][]ticket.Ticket{
			"DEMO-1": {tk("DEMO-4", "Epic", "DEMO-1"), tk("DEMO-2", "Epic", "DEMO-1")},
			"DEMO-2": {tk("DEMO-3", "Story", "DEMO-2")},
		},
	}

	got, err := Resolve(context.Background(), src, ticket.Scope{Key: "DEMO-1", Recursive: true})
	require.NoError(t, err)
	// Depth-first, children in key order.
	assert.Equal(t, []string{"DEMO-1", "DEMO-2", "DEMO-3", "DEMO-4"}, keysOf(got))
}

func TestResolveRecursiveDuplicateChildEmittedOnce(t *testing.T) {
	src := &fakeSource{
		tickets: map[string]ticket.Ticket{"DEMO-1": tk("DEMO-1", "Initiative", "")},
		children: map[string][]ticket.Ticket{
			// The same child returned twice, as can happen across
			// paginated calls.
			"DEMO-1": {tk("DEMO-2", "Epic", "DEMO-1"), tk("DEMO-2", "Epic", "DEMO-1")},
		},
	}

	got, err := Resolve(context.Background(), src, ticket.Scope{Key: "DEMO-1", Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEMO-1", "DEMO-2"}, keysOf(got))
}

func TestResolveRecursiveCycleTerminates(t *testing.T) {
	src := &fakeSource{
		tickets: map[string]ticket.Ticket{"DEMO-1": tk("DEMO-1", "Epic", "")},
		children: map[string][]ticket.Ticket{
			"DEMO-1": {tk("DEMO-2", "Story", "DEMO-1")},
			"DEMO-2": {tk("DEMO-1", "Epic", "")}, // points back at the ancestor
		},
	}

	got, err := Resolve(context.Background(), src, ticket.Scope{Key: "DEMO-1", Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEMO-1", "DEMO-2"}, keysOf(got))
}
