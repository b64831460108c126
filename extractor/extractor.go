package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Markers stored in place of fields that could not be resolved.
const (
	NoTitle       = "no title"
	UnknownSource = "unknown source"
)

const (
	// qualifyingLength is the number of characters a content candidate
	// must exceed before it is accepted.
	qualifyingLength = 100

	// fallbackLength caps the whole-document text used when no content
	// selector qualifies.
	fallbackLength = 3000
)

// DateKeywords are the substrings that mark a text node as carrying the
// publication date.
var DateKeywords = []string{"发布日期", "发布时间", "日期", "时间"}

// dateLabels are stripped from the resolved date text.
var dateLabels = []string{"发布日期：", "发布时间："}

// ContentSelectors lists the body containers tried in priority order.
var ContentSelectors = []string{
	"#content",
	".article-content",
	".content",
	".TRS_Editor",
	"article",
	".text",
	".post-content",
}

// Draft is an extraction result that has not been persisted yet.
type Draft struct {
	Title   string `json:"title"`
	PubDate string `json:"pub_date"`
	Source  string `json:"source"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// strategy resolves a single field from a parsed document. The boolean
// reports whether the strategy matched; the first matching strategy in a
// list wins. name identifies the strategy in test failures.
type strategy struct {
	name    string
	resolve func(doc *goquery.Document) (string, bool)
}

// firstMatch evaluates strategies in order and stops at the first match.
func firstMatch(doc *goquery.Document, strategies []strategy) (string, bool) {
	for _, s := range strategies {
		if value, ok := s.resolve(doc); ok {
			return value, true
		}
	}
	return "", false
}

var titleStrategies = []strategy{
	{name: "h1", resolve: elementText("h1")},
	{name: "title", resolve: elementText("title")},
	{name: "og:title", resolve: metaContent(`meta[property="og:title"]`)},
}

var dateStrategies = []strategy{
	{name: "keyword", resolve: keywordTextNode},
	{name: "date-class", resolve: dateClassElement},
}

var contentStrategies = buildContentStrategies(ContentSelectors)

func buildContentStrategies(selectors []string) []strategy {
	strategies := make([]strategy, 0, len(selectors))
	for _, sel := range selectors {
		strategies = append(strategies, strategy{name: sel, resolve: qualifyingContent(sel)})
	}
	return strategies
}

// Extract maps arbitrary markup onto a Draft. It never fails: fields that
// cannot be resolved receive their fallback values.
func Extract(markup, pageURL string) Draft {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Draft{
			Title:  NoTitle,
			Source: UnknownSource,
			URL:    pageURL,
		}
	}

	return ExtractDocument(doc, pageURL)
}

// ExtractDocument is Extract for an already parsed document.
func ExtractDocument(doc *goquery.Document, pageURL string) Draft {
	return Draft{
		Title:   resolveTitle(doc),
		PubDate: resolveDate(doc),
		Source:  resolveSource(doc),
		Content: resolveContent(doc),
		URL:     pageURL,
	}
}

func resolveTitle(doc *goquery.Document) string {
	if title, ok := firstMatch(doc, titleStrategies); ok {
		return title
	}
	return NoTitle
}

func resolveDate(doc *goquery.Document) string {
	date, _ := firstMatch(doc, dateStrategies)
	for _, label := range dateLabels {
		date = strings.ReplaceAll(date, label, "")
	}
	return strings.TrimSpace(date)
}

func resolveContent(doc *goquery.Document) string {
	if content, ok := firstMatch(doc, contentStrategies); ok {
		return content
	}
	return truncateRunes(strings.Join(visibleText(doc.Nodes), "\n"), fallbackLength)
}

func resolveSource(doc *goquery.Document) string {
	if source, ok := metaContent(`meta[property="og:site_name"]`)(doc); ok {
		return source
	}
	return UnknownSource
}

// elementText matches the first element for sel with non-blank text.
func elementText(sel string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			return "", false
		}
		text := strings.TrimSpace(node.Text())
		return text, text != ""
	}
}

// metaContent matches the content attribute of the first meta tag for sel.
func metaContent(sel string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			return "", false
		}
		content = strings.TrimSpace(content)
		return content, content != ""
	}
}

// keywordTextNode matches the first visible text node that mentions one of
// the DateKeywords.
func keywordTextNode(doc *goquery.Document) (string, bool) {
	for _, text := range visibleText(doc.Nodes) {
		for _, keyword := range DateKeywords {
			if strings.Contains(text, keyword) {
				return text, true
			}
		}
	}
	return "", false
}

// dateClassElement matches the first element whose class attribute
// contains "date" in any case.
func dateClassElement(doc *goquery.Document) (string, bool) {
	var text string
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if strings.Contains(strings.ToLower(class), "date") {
			text = s.Text()
			found = true
			return false
		}
		return true
	})
	return text, found
}

// qualifyingContent matches the first element for sel when its text is
// longer than qualifyingLength characters.
func qualifyingContent(sel string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			return "", false
		}
		if utf8.RuneCountInString(node.Text()) <= qualifyingLength {
			return "", false
		}
		text := strings.TrimSpace(strings.Join(visibleText(node.Nodes), "\n"))
		return text, text != ""
	}
}

// skippedElements never contribute visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// visibleText returns the trimmed, non-empty text nodes below roots in
// document order.
func visibleText(roots []*html.Node) []string {
	var texts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				texts = append(texts, text)
			}
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return texts
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
