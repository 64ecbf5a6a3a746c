package europepmc

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Document is a parsed JATS full-text article.
type Document struct {
	root *xmlquery.Node
}

// ParseDocument parses a JATS XML document. Malformed input yields an error
// wrapping ErrMalformed.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &Document{root: root}, nil
}

// HasBody reports whether the document element has a <body> child,
// which is what distinguishes full text from a metadata-only record.
func (d *Document) HasBody() bool {
	top := documentElement(d.root)
	if top == nil {
		return false
	}
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "body" {
			return true
		}
	}
	return false
}

// sectionKeys maps each lowercase token searched for in section labels and
// titles to the section it fills.
var sectionKeys = []struct {
	token   string
	section Section
}{
	{"intro", Introduction},
	{"method", Methods},
	{"result", Result},
	{"discussion", Discussion},
}

// Extract builds the normalized record for id from a parsed document.
func Extract(id string, doc *Document) Record {
	rec := Record{ID: id}
	if doc == nil || doc.root == nil {
		return rec
	}
	extractSections(doc.root, &rec)
	rec.Metadata = extractMetadata(doc.root)
	rec.SupplementaryMarkup = extractSupplementary(doc.root)
	return rec
}

func extractSections(root *xmlquery.Node, rec *Record) {
	filled := make(map[Section]bool, len(sectionKeys))
	for _, body := range elements(root, "body") {
		for _, sec := range elements(body, "sec") {
			if len(filled) == len(sectionKeys) {
				return
			}

			var names []Section
			if label, ok := attr(sec, "sec-type"); ok {
				names = classify(label)
			}
			if len(names) == 0 {
				if first := firstElement(sec); first != nil {
					names = classify(leadingText(first))
				}
			}
			if len(names) == 0 {
				continue
			}

			text := escapeQuotes(sec.InnerText())
			for _, name := range names {
				if filled[name] {
					continue
				}
				filled[name] = true
				rec.setSection(name, text)
			}
		}
	}
}

// classify returns every section whose token occurs in s, case-insensitively.
func classify(s string) []Section {
	s = strings.ToLower(s)
	if s == "" {
		return nil
	}
	var out []Section
	for _, k := range sectionKeys {
		if strings.Contains(s, k.token) {
			out = append(out, k.section)
		}
	}
	return out
}

func extractMetadata(root *xmlquery.Node) Metadata {
	var md Metadata
	for _, front := range elements(root, "front") {
		for _, issn := range elements(front, "issn") {
			kind, ok := attr(issn, "pub-type")
			if !ok {
				// JATS 1.1 replaced pub-type with publication-format.
				switch format, _ := attr(issn, "publication-format"); format {
				case "print":
					kind = "ppub"
				case "electronic":
					kind = "epub"
				}
			}
			if strings.Contains(kind, "ppub") && md.ISSNPrint == "" {
				md.ISSNPrint = issn.InnerText()
			}
			if strings.Contains(kind, "epub") && md.ISSNElectronic == "" {
				md.ISSNElectronic = issn.InnerText()
			}
		}
		if md.JournalTitle == "" {
			if n := firstDescendant(front, "journal-title"); n != nil {
				md.JournalTitle = n.InnerText()
			}
		}
		if md.PublisherName == "" {
			if n := firstDescendant(front, "publisher-name"); n != nil {
				md.PublisherName = n.InnerText()
			}
		}
	}
	return md
}

func extractSupplementary(root *xmlquery.Node) string {
	n := firstDescendant(root, "supplementary-material")
	if n == nil {
		return ""
	}
	return markupQuotes.Replace(n.OutputXML(true))
}

// escapeQuotes replaces double quotes with single quotes, the stored form of
// section text and markup.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

// markupQuotes applies escapeQuotes to serialized markup, where quotes in
// character data come out as entities.
var markupQuotes = strings.NewReplacer(
	`"`, "'",
	"&#34;", "'",
	"&quot;", "'",
	"&#39;", "'",
	"&apos;", "'",
)

func documentElement(root *xmlquery.Node) *xmlquery.Node {
	if root == nil {
		return nil
	}
	if root.Type == xmlquery.ElementNode {
		return root
	}
	return firstElement(root)
}

func firstElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// leadingText is the character data of n before its first child element.
func leadingText(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			break
		}
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// elements returns the descendants of n named name, in document order.
func elements(n *xmlquery.Node, name string) []*xmlquery.Node {
	var out []*xmlquery.Node
	walk(n, func(c *xmlquery.Node) bool {
		if c.Data == name {
			out = append(out, c)
		}
		return true
	})
	return out
}

func firstDescendant(n *xmlquery.Node, name string) *xmlquery.Node {
	var found *xmlquery.Node
	walk(n, func(c *xmlquery.Node) bool {
		if c.Data == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits the element descendants of n in preorder until fn returns false.
func walk(n *xmlquery.Node, fn func(*xmlquery.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if !fn(c) || !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
