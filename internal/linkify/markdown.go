package linkify

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// TimestampLink is an inline node wrapping one clock-format match.
type TimestampLink struct {
	ast.BaseInline
	Label   []byte
	Seconds int
}

// KindTimestampLink is the node kind of TimestampLink.
var KindTimestampLink = ast.NewNodeKind("TimestampLink")

func (n *TimestampLink) Kind() ast.NodeKind { return KindTimestampLink }

func (n *TimestampLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Label":   string(n.Label),
		"Seconds": strconv.Itoa(n.Seconds),
	}, nil)
}

// timestampTransformer splits document text nodes around clock-format
// matches. Only text nodes are touched; structural nodes pass through.
type timestampTransformer struct{}

func (t *timestampTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	// Collect first, mutate after: replacing nodes mid-walk confuses the
	// walker.
	var texts []*ast.Text
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if tn, ok := n.(*ast.Text); ok {
				texts = append(texts, tn)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, tn := range texts {
		parent := tn.Parent()
		if parent == nil {
			continue
		}
		// Code spans render their text children directly; leave them be.
		if parent.Kind() == ast.KindCodeSpan {
			continue
		}

		segs := Split(string(tn.Segment.Value(source)))
		interactive := false
		for _, s := range segs {
			if s.Interactive {
				interactive = true
				break
			}
		}
		if !interactive {
			continue
		}

		for _, s := range segs {
			var repl ast.Node
			if s.Interactive {
				repl = &TimestampLink{Label: []byte(s.Text), Seconds: s.Seconds}
			} else {
				repl = ast.NewString([]byte(s.Text))
			}
			parent.InsertBefore(parent, tn, repl)
		}

		// Keep the line break the original text node carried.
		if tn.SoftLineBreak() {
			parent.InsertBefore(parent, tn, ast.NewString([]byte("\n")))
		} else if tn.HardLineBreak() {
			br := ast.NewString([]byte("<br>\n"))
			br.SetRaw(true)
			parent.InsertBefore(parent, tn, br)
		}

		parent.RemoveChild(parent, tn)
	}
}

// timestampRenderer renders TimestampLink nodes as focusable spans. The
// role/tabindex pair gives keyboard activation parity with pointer clicks
// on the consuming page.
type timestampRenderer struct{}

func (r *timestampRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTimestampLink, r.render)
}

func (r *timestampRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*TimestampLink)
	label := util.EscapeHTML(n.Label)
	fmt.Fprintf(w, `<span class="chat-timestamp-link" role="button" tabindex="0" data-seconds="%d" title="Jump to %s">`, n.Seconds, label)
	_, _ = w.Write(label)
	_, _ = w.WriteString("</span>")
	return ast.WalkContinue, nil
}

type extension struct{}

// Extension wires timestamp linkifying into a goldmark.Markdown.
var Extension goldmark.Extender = &extension{}

func (e *extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(util.Prioritized(&timestampTransformer{}, 500)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&timestampRenderer{}, 500)))
}

var md = goldmark.New(goldmark.WithExtensions(Extension))

// RenderHTML renders chat markdown to HTML with clickable timestamp spans.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
