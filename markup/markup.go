// Package markup parses HTML into the generic block tree consumed by the
// layout engine. The rest of the browser never touches raw markup.
package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// NodeType identifies the kind of content node.
type NodeType int

const (
	NodeDocument NodeType = iota
	NodeHeading1
	NodeHeading2
	NodeHeading3
	NodeParagraph
	NodeBlockquote
	NodeList
	NodeListItem
	NodeCodeBlock
	NodeCode
	NodeLink
	NodeText
	NodeStrong
	NodeEmphasis
	NodeImage
	NodeBreak
	NodeRule
)

// Node represents a content node in the document tree.
type Node struct {
	Type     NodeType
	Text     string // text content; alt text for images
	Href     string // target for links
	Children []*Node
}

// Document is the parsed page: a title and the content tree.
type Document struct {
	Title string
	Root  *Node
}

// Parse builds a document tree from HTML.
func Parse(r io.Reader) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := &Node{Type: NodeDocument}
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	b := &builder{}
	b.walkBlocks(body, root)
	b.flushInline(root)

	return &Document{Title: findTitle(doc), Root: root}, nil
}

// ParseString parses HTML from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// builder accumulates loose inline content into implicit paragraphs while
// walking container elements.
type builder struct {
	inline *Node // pending implicit paragraph, nil when empty
}

func (b *builder) flushInline(parent *Node) {
	if b.inline == nil {
		return
	}
	if hasContent(b.inline) {
		parent.Children = append(parent.Children, b.inline)
	}
	b.inline = nil
}

func (b *builder) inlineTarget() *Node {
	if b.inline == nil {
		b.inline = &Node{Type: NodeParagraph}
	}
	return b.inline
}

func (b *builder) walkBlocks(n *html.Node, parent *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				extractInline(c, b.inlineTarget())
			}

		case html.ElementNode:
			if skipElement(c) {
				continue
			}

			switch c.Data {
			case "h1":
				b.flushInline(parent)
				parent.Children = append(parent.Children, headingNode(NodeHeading1, c))

			case "h2":
				b.flushInline(parent)
				parent.Children = append(parent.Children, headingNode(NodeHeading2, c))

			case "h3", "h4", "h5", "h6":
				b.flushInline(parent)
				parent.Children = append(parent.Children, headingNode(NodeHeading3, c))

			case "p":
				b.flushInline(parent)
				node := &Node{Type: NodeParagraph}
				extractInline(c, node)
				if hasContent(node) {
					parent.Children = append(parent.Children, node)
				}

			case "blockquote":
				b.flushInline(parent)
				node := &Node{Type: NodeBlockquote}
				inner := &builder{}
				inner.walkBlocks(c, node)
				inner.flushInline(node)
				if len(node.Children) > 0 {
					parent.Children = append(parent.Children, node)
				}

			case "ul", "ol":
				b.flushInline(parent)
				node := &Node{Type: NodeList}
				extractList(c, node)
				if len(node.Children) > 0 {
					parent.Children = append(parent.Children, node)
				}

			case "pre":
				b.flushInline(parent)
				parent.Children = append(parent.Children, &Node{Type: NodeCodeBlock, Text: rawText(c)})

			case "hr":
				b.flushInline(parent)
				parent.Children = append(parent.Children, &Node{Type: NodeRule})

			case "br":
				extractInline(c, b.inlineTarget())

			case "a", "strong", "b", "em", "i", "code", "span", "small", "u", "img":
				extractInline(c, b.inlineTarget())

			case "table", "tbody", "thead", "tr", "td", "th",
				"article", "main", "section", "div", "header", "footer",
				"nav", "aside", "figure", "figcaption", "form",
				"details", "summary", "dl", "dt", "dd", "body":
				b.flushInline(parent)
				b.walkBlocks(c, parent)
				b.flushInline(parent)
			}
		}
	}
}

func headingNode(t NodeType, c *html.Node) *Node {
	node := &Node{Type: t, Text: textContent(c)}
	// Headings that wrap a single link keep the target so they stay navigable.
	if a := findElement(c, "a"); a != nil {
		node.Href = getAttr(a, "href")
	}
	return node
}

func imageNode(c *html.Node) *Node {
	alt := getAttr(c, "alt")
	if alt == "" {
		alt = "image"
	}
	return &Node{Type: NodeImage, Text: alt}
}

func extractList(n *html.Node, parent *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			item := &Node{Type: NodeListItem}
			extractInline(c, item)
			parent.Children = append(parent.Children, item)
		}
	}
}

func extractInline(n *html.Node, parent *Node) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			parent.Children = append(parent.Children, &Node{Type: NodeText, Text: n.Data})
		}
		return

	case html.ElementNode:
		if skipElement(n) {
			return
		}
		switch n.Data {
		case "a":
			link := &Node{Type: NodeLink, Href: getAttr(n, "href")}
			extractInlineChildren(n, link)
			parent.Children = append(parent.Children, link)
			return

		case "strong", "b":
			node := &Node{Type: NodeStrong}
			extractInlineChildren(n, node)
			parent.Children = append(parent.Children, node)
			return

		case "em", "i":
			node := &Node{Type: NodeEmphasis}
			extractInlineChildren(n, node)
			parent.Children = append(parent.Children, node)
			return

		case "code":
			parent.Children = append(parent.Children, &Node{Type: NodeCode, Text: textContent(n)})
			return

		case "br":
			parent.Children = append(parent.Children, &Node{Type: NodeBreak})
			return

		case "img":
			parent.Children = append(parent.Children, imageNode(n))
			return
		}
	}
	extractInlineChildren(n, parent)
}

func extractInlineChildren(n *html.Node, parent *Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractInline(c, parent)
	}
}

func skipElement(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "head", "meta", "link", "template", "noscript",
		"iframe", "svg", "canvas", "object", "video", "audio":
		return true
	}
	if getAttr(n, "hidden") != "" || getAttr(n, "aria-hidden") == "true" {
		return true
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findTitle(doc *html.Node) string {
	title := findElement(doc, "title")
	if title == nil {
		return ""
	}
	return strings.Join(strings.Fields(textContent(title)), " ")
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

// rawText returns text content preserving whitespace, for pre blocks.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Trim(sb.String(), "\n")
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasContent(n *Node) bool {
	for _, child := range n.Children {
		switch child.Type {
		case NodeText:
			if strings.TrimSpace(child.Text) != "" {
				return true
			}
		case NodeBreak:
			// alone, a break is not content
		default:
			return true
		}
	}
	return false
}

// PlainText returns the text content of a node and its children.
func (n *Node) PlainText() string {
	var sb strings.Builder
	n.appendPlainText(&sb)
	return sb.String()
}

func (n *Node) appendPlainText(sb *strings.Builder) {
	if n.Type == NodeText || n.Type == NodeCode || n.Type == NodeCodeBlock {
		sb.WriteString(n.Text)
	}
	for _, child := range n.Children {
		child.appendPlainText(sb)
	}
}
