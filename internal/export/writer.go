package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

// Characters that are invalid in file names on at least one supported
// platform; replaced with underscores during sanitization.
const invalidPathChars = `<>:"/\|?*`

// Directory names embed the ticket summary, truncated to this many runes.
const summaryMaxLen = 50

// Writer materializes tickets as a directory tree rooted at root. Each
// ticket becomes a directory named PREFIX-KEY-summary containing ticket.md
// and metadata.json, nested under its parent ticket's directory when the
// parent has already been written.
type Writer struct {
	fs   afero.Fs
	root string
	dirs map[string]string // ticket key -> created directory
}

// WriteError records a per-ticket filesystem failure.
type WriteError struct {
	Key string
	Err error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e WriteError) Unwrap() error {
	return e.Err
}

// NewWriter creates a writer over the given filesystem. Production code
// passes afero.NewOsFs(); tests use an in-memory filesystem.
func NewWriter(fs afero.Fs, root string) *Writer {
	return &Writer{fs: fs, root: root, dirs: make(map[string]string)}
}

// Init creates the output root. Failure here aborts the whole run, unlike
// per-ticket write failures.
func (w *Writer) Init() error {
	if err := w.fs.MkdirAll(w.root, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", w.root, err)
	}
	return nil
}

// Clean removes previous contents of the output root. A missing root is
// not an error.
func (w *Writer) Clean() error {
	entries, err := afero.ReadDir(w.fs, w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading output directory %s: %w", w.root, err)
	}
	for _, e := range entries {
		if err := w.fs.RemoveAll(filepath.Join(w.root, e.Name())); err != nil {
			return fmt.Errorf("cleaning %s: %w", w.root, err)
		}
	}
	return nil
}

// Write materializes one ticket. Tickets must arrive parent before child;
// a ticket whose parent directory is unknown is placed at the top level.
// Re-writing a ticket overwrites its files with current values.
func (w *Writer) Write(t ticket.Ticket) error {
	base := w.root
	if parent, ok := w.dirs[t.ParentKey]; ok && t.ParentKey != "" {
		base = parent
	}
	dir := filepath.Join(base, DirName(t))
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return WriteError{Key: t.Key, Err: err}
	}
	w.dirs[t.Key] = dir

	md := MarshalTicket(t)
	if err := afero.WriteFile(w.fs, filepath.Join(dir, "ticket.md"), []byte(md), 0644); err != nil {
		return WriteError{Key: t.Key, Err: err}
	}

	meta, err := marshalMetadata(t)
	if err != nil {
		return WriteError{Key: t.Key, Err: err}
	}
	if err := afero.WriteFile(w.fs, filepath.Join(dir, "metadata.json"), meta, 0644); err != nil {
		return WriteError{Key: t.Key, Err: err}
	}
	return nil
}

// Dir returns the directory created for the given ticket key, if any.
func (w *Writer) Dir(key string) (string, bool) {
	dir, ok := w.dirs[key]
	return dir, ok
}

// DirName builds the directory name for a ticket: type prefix, key, and
// the sanitized, truncated summary.
func DirName(t ticket.Ticket) string {
	summary := t.Summary
	if runes := []rune(summary); len(runes) > summaryMaxLen {
		summary = string(runes[:summaryMaxLen-3]) + "..."
	}
	return Sanitize(fmt.Sprintf("%s-%s-%s", ticket.TypePrefix(t.Type), t.Key, summary))
}

// Sanitize replaces characters that are invalid in file names with
// underscores and trims leading/trailing dots and spaces.
func Sanitize(s string) string {
	for _, c := range invalidPathChars {
		s = strings.ReplaceAll(s, string(c), "_")
	}
	return strings.Trim(s, ". ")
}

// MarshalTicket renders a ticket as markdown with YAML frontmatter. The
// layout is stable: identical input yields byte-identical output, so
// re-running an export against unchanged remote data is a no-op on disk.
func MarshalTicket(t ticket.Ticket) string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "key: %s\n", t.Key)
	fmt.Fprintf(&b, "title: %s\n", t.Summary)
	fmt.Fprintf(&b, "status: %s\n", t.Status)
	if t.StatusCategory != "" {
		fmt.Fprintf(&b, "statusCategory: %s\n", t.StatusCategory)
	}
	fmt.Fprintf(&b, "type: %s\n", t.Type)
	if len(t.Labels) > 0 {
		fmt.Fprintf(&b, "labels: [%s]\n", strings.Join(t.Labels, ", "))
	} else {
		b.WriteString("labels: []\n")
	}
	if t.Assignee != "" {
		fmt.Fprintf(&b, "assignee: %s\n", t.Assignee)
	}
	if t.Reporter != "" {
		fmt.Fprintf(&b, "reporter: %s\n", t.Reporter)
	}
	if t.ParentKey != "" {
		fmt.Fprintf(&b, "parent: %s\n", t.ParentKey)
	}
	if t.Updated != "" {
		fmt.Fprintf(&b, "updated: %s\n", t.Updated)
	}
	if t.URL != "" {
		fmt.Fprintf(&b, "url: %s\n", t.URL)
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s: %s\n\n", t.Key, t.Summary)

	b.WriteString("## Description\n\n")
	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n")
	} else {
		b.WriteString("(No description)\n")
	}

	if len(t.Comments) > 0 {
		b.WriteString("\n## Comments\n\n")
		for _, c := range t.Comments {
			fmt.Fprintf(&b, "### %s - %s\n\n", c.Author, c.Created)
			if c.Body != "" {
				b.WriteString(c.Body)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// metadata mirrors the fields the original exporter wrote per ticket.
type metadata struct {
	Key      string   `json:"key"`
	URL      string   `json:"url,omitempty"`
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Summary  string   `json:"summary"`
	Reporter string   `json:"reporter,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Updated  string   `json:"updated,omitempty"`
	Parent   string   `json:"parent,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

func marshalMetadata(t ticket.Ticket) ([]byte, error) {
	m := metadata{
		Key:      t.Key,
		URL:      t.URL,
		Type:     t.Type,
		Status:   t.Status,
		Summary:  t.Summary,
		Reporter: t.Reporter,
		Assignee: t.Assignee,
		Updated:  t.Updated,
		Parent:   t.ParentKey,
		Labels:   t.Labels,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}
	return append(data, '\n'), nil
}
