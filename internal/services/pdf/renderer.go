// -----------------------------------------------------------------------
// PDF Renderer - Render markdown digest reports as PDF attachments
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Renderer converts a markdown digest report into a PDF byte slice for
// email attachment.
type Renderer struct {
	logger arbor.ILogger
}

// NewRenderer creates a markdown-to-PDF renderer
func NewRenderer(logger arbor.ILogger) *Renderer {
	return &Renderer{logger: logger}
}

// RenderMarkdown renders markdown content to PDF. The title is set as PDF
// document metadata; the heading structure comes from the markdown itself.
func (r *Renderer) RenderMarkdown(markdown, title string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 10)
	doc.AddPage()
	doc.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)

	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	w := &docWriter{doc: doc, source: source}
	if err := ast.Walk(root, w.walk); err != nil {
		return nil, fmt.Errorf("failed to render digest markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write digest PDF: %w", err)
	}

	r.logger.Debug().
		Str("title", title).
		Int("markdown_len", len(markdown)).
		Int("pdf_size", buf.Len()).
		Msg("Rendered digest PDF")

	return buf.Bytes(), nil
}

// docWriter walks the goldmark AST and emits fpdf drawing calls. Digest
// reports use headings, paragraphs, lists, emphasis and tables; other
// block types fall through as plain text.
type docWriter struct {
	doc    *fpdf.Fpdf
	source []byte
	bold   bool
	italic bool
	indent int
}

const (
	bodySize   = 9.0
	lineHeight = 5.0
	tableSize  = 8.0
	pageWidth  = 190.0
)

func (w *docWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		w.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			w.doc.Ln(7)
		}
	case *ast.Text:
		if entering {
			w.doc.Write(lineHeight, string(node.Text(w.source)))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.applyFont()
	case *ast.List:
		if entering {
			w.indent++
		} else {
			w.indent--
			if w.indent == 0 {
				w.doc.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			w.doc.Ln(lineHeight)
			w.doc.SetX(10 + float64(w.indent)*5)
			w.doc.Write(lineHeight, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			w.doc.Ln(2)
			w.doc.Line(10, w.doc.GetY(), 200, w.doc.GetY())
			w.doc.Ln(2)
		}
	case *extast.Table:
		if entering {
			w.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (w *docWriter) applyFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.doc.SetFont("Arial", style, bodySize)
}

func (w *docWriter) heading(n *ast.Heading, entering bool) {
	if entering {
		w.doc.Ln(6)
		size := 14.0 - float64(n.Level)
		if size < 10 {
			size = 10
		}
		w.doc.SetFont("Arial", "B", size)
		return
	}
	w.doc.Ln(6)
	w.applyFont()
}

// table renders a markdown table as a bordered grid. Column widths are
// proportional to the widest cell in each column; cells are truncated with
// an ellipsis rather than wrapped, since digest tables hold short fields.
func (w *docWriter) table(n *extast.Table) {
	var rows [][]string
	for section := n.FirstChild(); section != nil; section = section.NextSibling() {
		switch s := section.(type) {
		case *extast.TableHeader:
			for tr := s.FirstChild(); tr != nil; tr = tr.NextSibling() {
				if row, ok := tr.(*extast.TableRow); ok {
					rows = append(rows, w.cells(row))
				}
			}
		case *extast.TableRow:
			rows = append(rows, w.cells(s))
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	w.doc.Ln(2)
	widths := w.columnWidths(rows, len(rows[0]))

	for i, row := range rows {
		if i == 0 {
			w.doc.SetFont("Arial", "B", tableSize)
			w.doc.SetFillColor(230, 230, 230)
		} else {
			w.doc.SetFont("Arial", "", tableSize)
			w.doc.SetFillColor(255, 255, 255)
		}
		for j, width := range widths {
			cell := ""
			if j < len(row) {
				cell = w.truncate(row[j], width-2)
			}
			w.doc.CellFormat(width, lineHeight+1, cell, "1", 0, "L", i == 0, 0, "")
		}
		w.doc.Ln(-1)
	}

	w.doc.Ln(3)
	w.applyFont()
}

func (w *docWriter) cells(row *extast.TableRow) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			out = append(out, string(cell.Text(w.source)))
		}
	}
	return out
}

func (w *docWriter) columnWidths(rows [][]string, numCols int) []float64 {
	widths := make([]float64, numCols)
	w.doc.SetFont("Arial", "B", tableSize)
	for _, row := range rows {
		for i, cell := range row {
			if i >= numCols {
				continue
			}
			if cw := w.doc.GetStringWidth(cell) + 4; cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	total := 0.0
	for i := range widths {
		if widths[i] < 12 {
			widths[i] = 12
		}
		total += widths[i]
	}
	if total > pageWidth {
		scale := pageWidth / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

func (w *docWriter) truncate(s string, width float64) string {
	if w.doc.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 3 && w.doc.GetStringWidth(s+"...") > width {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	return s + "..."
}
