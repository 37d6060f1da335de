// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package htmlfix repairs definition HTML and extracts plain text from HTML
// fragments found in dictionary sources.
package htmlfix

import (
	"fmt"
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ianlewis/go-stardict-export/internal/folding"
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var tabs = strings.NewReplacer("\t", "    ")

// Fix parses s as an HTML body fragment and renders it again. Unclosed and
// misnested tags are closed, entities are decoded and every non-blank text
// node is wrapped in a <span> so that no text is left between tags. Line
// endings are converted to "\n" and tabs to four spaces.
func Fix(s string) (string, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(newlines.Replace(s)), body)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	var texts []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			texts = append(texts, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	for _, n := range texts {
		// Sources sometimes escape entities twice.
		n.Data = html.UnescapeString(n.Data)

		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
		}
		n.Parent.InsertBefore(span, n)
		n.Parent.RemoveChild(n)
		span.AppendChild(n)
	}

	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("rendering html: %w", err)
		}
	}
	return tabs.Replace(newlines.Replace(sb.String())), nil
}

// PlainText returns the text content of the HTML fragment s with entities
// decoded and whitespace folded.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	text := html2text.HTML2TextWithOptions(s, html2text.WithUnixLineBreaks())
	text = html.UnescapeString(text)
	return folding.FoldWhitespace(text)
}
