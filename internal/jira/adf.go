package jira

import (
	"fmt"
	"strings"
)

// renderADF converts an ADF node tree to markdown.
func renderADF(node *ADFNode) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	renderNode(&b, node, "")
	return b.String()
}

func renderNode(b *strings.Builder, node *ADFNode, listPrefix string) {
	switch node.Type {
	case "doc":
		renderChildren(b, node, "")

	case "paragraph":
		renderInlineChildren(b, node)
		b.WriteString("\n\n")

	case "heading":
		level := 2 // default
		if l, ok := node.Attrs["level"]; ok {
			if lf, ok := l.(float64); ok {
				level = int(lf)
			}
		}
		b.WriteString(strings.Repeat("#", level))
		b.WriteString(" ")
		renderInlineChildren(b, node)
		b.WriteString("\n\n")

	case "bulletList":
		for _, child := range node.Content {
			renderNode(b, &child, "- ")
		}

	case "orderedList":
		for i, child := range node.Content {
			renderNode(b, &child, fmt.Sprintf("%d. ", i+1))
		}

	case "listItem":
		// A list item may contain paragraphs or nested lists.
		for i, child := range node.Content {
			if i == 0 && child.Type == "paragraph" {
				b.WriteString(listPrefix)
				renderInlineChildren(b, &child)
				b.WriteString("\n")
			} else if child.Type == "bulletList" || child.Type == "orderedList" {
				// Indent nested lists
				indented := strings.Repeat(" ", len(listPrefix))
				for j, nested := range child.Content {
					prefix := "- "
					if child.Type == "orderedList" {
						prefix = fmt.Sprintf("%d. ", j+1)
					}
					renderNode(b, &nested, indented+prefix)
				}
			} else {
				renderNode(b, &child, listPrefix)
			}
		}

	case "codeBlock":
		lang := ""
		if l, ok := node.Attrs["language"]; ok {
			if ls, ok := l.(string); ok {
				lang = ls
			}
		}
		b.WriteString("```")
		b.WriteString(lang)
		b.WriteString("\n")
		for _, child := range node.Content {
			b.WriteString(child.Text)
		}
		b.WriteString("\n```\n\n")

	case "blockquote":
		var inner strings.Builder
		renderChildren(&inner, node, "")
		lines := strings.Split(strings.TrimRight(inner.String(), "\n"), "\n")
		for _, line := range lines {
			b.WriteString("> ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")

	case "rule":
		b.WriteString("---\n\n")

	case "table":
		renderTable(b, node)

	case "text":
		text := applyMarks(node.Text, node.Marks)
		b.WriteString(text)

	case "hardBreak":
		b.WriteString("\n")

	case "mention":
		name := ""
		if t, ok := node.Attrs["text"]; ok {
			if ts, ok := t.(string); ok {
				name = ts
			}
		}
		b.WriteString("@")
		b.WriteString(name)

	case "inlineCard":
		url := ""
		if u, ok := node.Attrs["url"]; ok {
			if us, ok := u.(string); ok {
				url = us
			}
		}
		b.WriteString(fmt.Sprintf("[link](%s)", url))

	case "emoji":
		text := ""
		if t, ok := node.Attrs["text"]; ok {
			if ts, ok := t.(string); ok {
				text = ts
			}
		}
		if text == "" {
			if sc, ok := node.Attrs["shortName"]; ok {
				if scs, ok := sc.(string); ok {
					text = scs
				}
			}
		}
		b.WriteString(text)

	case "mediaGroup", "mediaSingle", "media":
		// Attachments cannot be exported as text; leave a note.
		b.WriteString("(attachment)\n\n")

	default:
		// Best effort: try to render children
		renderChildren(b, node, "")
	}
}

func renderChildren(b *strings.Builder, node *ADFNode, listPrefix string) {
	for i := range node.Content {
		renderNode(b, &node.Content[i], listPrefix)
	}
}

func renderInlineChildren(b *strings.Builder, node *ADFNode) {
	for i := range node.Content {
		renderNode(b, &node.Content[i], "")
	}
}

func renderTable(b *strings.Builder, node *ADFNode) {
	if len(node.Content) == 0 {
		return
	}

	rows := make([][]string, 0, len(node.Content))
	for _, row := range node.Content {
		if row.Type != "tableRow" {
			continue
		}
		cells := make([]string, 0, len(row.Content))
		for _, cell := range row.Content {
			var cellBuf strings.Builder
			for i := range cell.Content {
				renderInlineChildren(&cellBuf, &cell.Content[i])
			}
			cells = append(cells, strings.TrimSpace(cellBuf.String()))
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return
	}

	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	b.WriteString("| ")
	b.WriteString(strings.Join(padRow(rows[0], maxCols), " | "))
	b.WriteString(" |\n")

	sep := make([]string, maxCols)
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| ")
	b.WriteString(strings.Join(sep, " | "))
	b.WriteString(" |\n")

	for _, row := range rows[1:] {
		b.WriteString("| ")
		b.WriteString(strings.Join(padRow(row, maxCols), " | "))
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
}

func padRow(row []string, cols int) []string {
	for len(row) < cols {
		row = append(row, "")
	}
	return row
}

func applyMarks(text string, marks []ADFMark) string {
	for _, mark := range marks {
		switch mark.Type {
		case "strong":
			text = "**" + text + "**"
		case "em":
			text = "*" + text + "*"
		case "code":
			text = "`" + text + "`"
		case "strike":
			text = "~~" + text + "~~"
		case "link":
			href := ""
			if h, ok := mark.Attrs["href"]; ok {
				if hs, ok := h.(string); ok {
					href = hs
				}
			}
			text = fmt.Sprintf("[%s](%s)", text, href)
		case "underline":
			// Markdown doesn't support underline natively; use emphasis
			text = "_" + text + "_"
		}
	}
	return text
}
