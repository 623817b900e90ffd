package jira

import (
	"fmt"
	"strings"

	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

// Issue represents a Jira issue from the REST API v3.
type Issue struct {
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// Fields contains the issue fields we care about.
type Fields struct {
	Summary     string    `json:"summary"`
	Status      Status    `json:"status"`
	IssueType   IssueType `json:"issuetype"`
	Parent      *Parent   `json:"parent,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	Assignee    *User     `json:"assignee,omitempty"`
	Reporter    *User     `json:"reporter,omitempty"`
	Description *ADFNode  `json:"description,omitempty"`
	Comment     *Comments `json:"comment,omitempty"`
	Updated     string    `json:"updated,omitempty"`
}

// Status represents a Jira status.
type Status struct {
	Name           string          `json:"name"`
	StatusCategory *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory represents the high-level category of a Jira status.
type StatusCategory struct {
	Key  string `json:"key"`  // "new", "indeterminate", "done"
	Name string `json:"name"` // "To Do", "In Progress", "Done"
}

// IssueType represents a Jira issue type.
type IssueType struct {
	Name string `json:"name"`
}

// Parent is the parent reference embedded in an issue's fields. It covers
// both initiative→epic and epic→story links in next-gen projects.
type Parent struct {
	Key string `json:"key"`
}

// User represents a Jira user.
type User struct {
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// Comments wraps the comments array from the Jira API.
type Comments struct {
	Comments []Comment `json:"comments"`
}

// Comment represents a single Jira comment.
type Comment struct {
	Author  User     `json:"author"`
	Body    *ADFNode `json:"body"`
	Created string   `json:"created"`
}

// ADFNode represents a node in the Atlassian Document Format.
type ADFNode struct {
	Type    string         `json:"type"`
	Content []ADFNode      `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []ADFMark      `json:"marks,omitempty"`
}

// ADFMark represents an inline formatting mark in ADF.
type ADFMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// SearchResponse is the paginated response from GET /rest/api/3/search.
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// toTicket maps a wire issue into the strict internal record, validating
// required fields eagerly so malformed responses fail here rather than in
// the writer.
func toTicket(is Issue, baseURL string) (ticket.Ticket, error) {
	if is.Key == "" || is.Fields.Summary == "" || is.Fields.IssueType.Name == "" {
		return ticket.Ticket{}, fmt.Errorf("%w: malformed issue in response (missing key, summary, or issuetype)", ErrTransport)
	}

	t := ticket.Ticket{
		Key:         is.Key,
		Type:        is.Fields.IssueType.Name,
		Summary:     is.Fields.Summary,
		Status:      is.Fields.Status.Name,
		Labels:      is.Fields.Labels,
		Updated:     is.Fields.Updated,
		URL:         baseURL + "/browse/" + is.Key,
		Description: strings.TrimRight(renderADF(is.Fields.Description), "\n"),
	}
	if is.Fields.Status.StatusCategory != nil {
		t.StatusCategory = is.Fields.Status.StatusCategory.Name
	}
	if is.Fields.Parent != nil {
		t.ParentKey = is.Fields.Parent.Key
	}
	if is.Fields.Assignee != nil {
		t.Assignee = userName(*is.Fields.Assignee)
	}
	if is.Fields.Reporter != nil {
		t.Reporter = userName(*is.Fields.Reporter)
	}
	if is.Fields.Comment != nil {
		for _, c := range is.Fields.Comment.Comments {
			t.Comments = append(t.Comments, ticket.Comment{
				Author:  userName(c.Author),
				Created: c.Created,
				Body:    strings.TrimRight(renderADF(c.Body), "\n"),
			})
		}
	}
	return t, nil
}

func userName(u User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.EmailAddress
}
