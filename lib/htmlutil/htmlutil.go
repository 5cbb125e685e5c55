package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

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

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText extracts the selection's text with non-printable runes removed.
func CleanText(sel *goquery.Selection) string {
	return removeNonPrintable(sel.Text())
}

// IsStruck reports whether the selection is rendered with strikethrough:
// either nested in <del>/<s> or styled with line-through. Retail themes use
// both for the "regular price" next to a sale price.
func IsStruck(sel *goquery.Selection) bool {
	if sel.ParentsFiltered("del, s").Length() > 0 {
		return true
	}
	nodeName := goquery.NodeName(sel)
	if nodeName == "del" || nodeName == "s" {
		return true
	}
	style, _ := sel.Attr("style")
	return strings.Contains(style, "line-through")
}
