// Package ticket defines the internal ticket record and export scope.
// Tickets are built at the API boundary from Jira responses and discarded
// after their files are written; there is no local persistence.
package ticket

import "strings"

// Ticket is a single work item identified by a project-scoped key.
// Descriptions and comment bodies are already rendered to markdown.
type Ticket struct {
	Key            string
	Type           string
	Summary        string
	Status         string
	StatusCategory string
	Description    string
	ParentKey      string
	URL            string
	Reporter       string
	Assignee       string
	Updated        string
	Labels         []string
	Comments       []Comment
}

// Comment is a single comment on a ticket.
type Comment struct {
	Author  string
	Created string
	Body    string
}

// TypePrefix returns the short directory-name prefix for an issue type.
func TypePrefix(issueType string) string {
	t := strings.ToLower(issueType)
	switch {
	case strings.Contains(t, "initiative"):
		return "INI"
	case strings.Contains(t, "epic"):
		return "EPIC"
	case strings.Contains(t, "story"):
		return "STORY"
	default:
		return "TASK"
	}
}

// Scope selects which tickets an export covers: the whole configured
// project, a single ticket, or a single ticket plus all descendants.
type Scope struct {
	Project   string
	Key       string
	Recursive bool
}

// Whole reports whether the scope covers the entire project.
func (s Scope) Whole() bool {
	return s.Key == ""
}
