package utils

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
)

// DefaultCurrency is the symbol used when rendering salaries for humans
const DefaultCurrency = "£"

// FormatSalary formats a salary as a whole-unit amount with thousands separators
func FormatSalary(salary float64, currency string) string {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return "Not Available"
	}
	return fmt.Sprintf("%s%s", currency, humanize.Comma(int64(math.Round(salary))))
}

// FormatCount formats an integer count with thousands separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// TruncateString truncates a string to the specified length and adds "..." if necessary
func TruncateString(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	if length <= 3 {
		return string(runes[:length])
	}
	return string(runes[:length-3]) + "..."
}

var (
	htmlTag    = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>`)
	htmlEntity = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// StripHTML reduces markup to its text nodes separated by single spaces.
// Text without a real tag only has its entities decoded, so a bare '<' or '&'
// is kept as written.
func StripHTML(s string) string {
	if !htmlTag.MatchString(s) {
		if htmlEntity.MatchString(s) {
			return html.UnescapeString(s)
		}
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(strings.Join(textNodes(doc.Selection, nil), " ")), " ")
}

func textNodes(sel *goquery.Selection, parts []string) []string {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			parts = append(parts, child.Text())
		case "script", "style":
		default:
			parts = textNodes(child, parts)
		}
	})
	return parts
}
