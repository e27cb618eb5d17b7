package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// jsCallRe captures the argument list of onclick-style javascript
// navigation, e.g. javascript:fn_view('12345','001','2024001').
var jsCallRe = regexp.MustCompile(`fn\w*\(([^)]*)\)`)

// detailParamNames maps positional javascript call arguments onto the
// form fields the detail endpoint expects.
var detailParamNames = []string{"panId", "panDtlSeq", "notiSeq", "bbsSeq"}

// ParseListPage extracts announcements from a listing page body and
// reports whether a further page exists.
func ParseListPage(body, baseURL string) ([]Announcement, bool, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, false, err
	}

	var anns []Announcement
	for _, table := range findAll(doc, "table") {
		tbody := findFirst(table, "tbody")
		if tbody == nil {
			tbody = table
		}
		for _, row := range findAll(tbody, "tr") {
			if ann, ok := parseListRow(row, baseURL); ok {
				anns = append(anns, ann)
			}
		}
	}
	return anns, hasNextPage(doc), nil
}

func parseListRow(row *html.Node, baseURL string) (Announcement, bool) {
	cells := findAll(row, "td")
	if len(cells) == 0 {
		return Announcement{}, false
	}

	anchor := findFirst(row, "a")
	if anchor == nil {
		return Announcement{}, false
	}

	ann := Announcement{
		Title:  nodeText(anchor),
		Fields: map[string]string{},
	}
	for i, cell := range cells {
		ann.Fields["col"+strconv.Itoa(i)] = nodeText(cell)
	}

	href := attr(anchor, "href")
	switch {
	case href != "" && !strings.HasPrefix(href, "javascript"):
		ann.DetailURL = resolveURL(baseURL, href)
		ann.ID = ann.DetailURL
	default:
		target := href
		if target == "" || target == "javascript:void(0)" || target == "#" {
			target = attr(anchor, "onclick")
		}
		if payload, ok := resolveDetailTarget(target); ok {
			ann.payload = payload
			ann.ID = payload.Get("panId")
		}
	}
	if ann.ID == "" {
		if id := attr(anchor, "data-id"); id != "" {
			ann.ID = id
		} else if id := attr(anchor, "id"); id != "" {
			ann.ID = id
		} else {
			ann.ID = ann.Title
		}
	}
	if ann.Title == "" {
		return Announcement{}, false
	}
	return ann, true
}

// resolveDetailTarget parses a javascript navigation call into the
// POST form the detail endpoint takes. Arguments map positionally onto
// panId, panDtlSeq, notiSeq and bbsSeq.
func resolveDetailTarget(js string) (url.Values, bool) {
	m := jsCallRe.FindStringSubmatch(js)
	if m == nil {
		return nil, false
	}
	form := url.Values{}
	for i, arg := range strings.Split(m[1], ",") {
		if i >= len(detailParamNames) {
			break
		}
		arg = strings.Trim(strings.TrimSpace(arg), `'"`)
		if arg != "" {
			form.Set(detailParamNames[i], arg)
		}
	}
	if len(form) == 0 {
		return nil, false
	}
	return form, true
}

// ParseAttachments pulls PDF links out of a detail page body.
func ParseAttachments(body, baseURL string) ([]Attachment, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	var atts []Attachment
	seen := map[string]bool{}
	for _, anchor := range findAll(doc, "a") {
		href := attr(anchor, "href")
		if href == "" || !strings.Contains(strings.ToLower(href), ".pdf") {
			continue
		}
		full := resolveURL(baseURL, href)
		if seen[full] {
			continue
		}
		seen[full] = true
		name := nodeText(anchor)
		if name == "" {
			name = filenameFromURL(full)
		}
		atts = append(atts, Attachment{Name: name, URL: full})
	}
	return atts, nil
}

// hasNextPage looks through pagination anchors for a usable "next"
// control.
func hasNextPage(doc *html.Node) bool {
	for _, anchor := range findAll(doc, "a") {
		text := strings.TrimSpace(nodeText(anchor))
		class := attr(anchor, "class")
		isNext := text == "다음" || text == ">" || text == ">>" ||
			strings.Contains(strings.ToLower(class), "next")
		if !isNext {
			continue
		}
		if strings.Contains(strings.ToLower(class), "disabled") {
			continue
		}
		href := attr(anchor, "href")
		onclick := attr(anchor, "onclick")
		if (href != "" && href != "#" && !strings.HasPrefix(href, "javascript:void")) || onclick != "" {
			return true
		}
	}
	return false
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "attachment"
	}
	parts := strings.Split(u.Path, "/")
	name := parts[len(parts)-1]
	if name == "" {
		return "attachment"
	}
	return name
}

// findAll returns every descendant element with the given tag name.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
