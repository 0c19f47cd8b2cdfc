package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// InnerHTML renders the children of the first node in the selection,
// an empty selection renders as "".
func InnerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	out, err := sel.First().Html()
	if err != nil {
		return ""
	}
	return out
}

// OuterHTML renders the first node of the selection including itself,
// it is used to attach the offending markup to extraction errors.
func OuterHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	out, err := goquery.OuterHtml(sel.First())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
