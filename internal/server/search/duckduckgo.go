package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// DefaultEndpoint is the DuckDuckGo lite HTML interface.
const DefaultEndpoint = "https://lite.duckduckgo.com/lite/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DuckDuckGo scrapes the lite HTML results page. Requests are sent once;
// failures wrap common.ErrService.
type DuckDuckGo struct {
	client   *http.Client
	endpoint string
}

// NewDuckDuckGo creates a searcher against endpoint (DefaultEndpoint when
// empty) with a modest timeout.
func NewDuckDuckGo(endpoint string) *DuckDuckGo {
	return NewDuckDuckGoWithClient(endpoint, &http.Client{Timeout: 15 * time.Second})
}

// NewDuckDuckGoWithClient creates a searcher using the supplied HTTP client.
func NewDuckDuckGoWithClient(endpoint string, client *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &DuckDuckGo{client: client, endpoint: endpoint}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", common.ErrValidation)
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrService, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: duckduckgo request: %v", common.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: duckduckgo http %d", common.ErrService, resp.StatusCode)
	}

	results, err := parseResults(resp.Body, max)
	if err != nil {
		return nil, fmt.Errorf("%w: parse duckduckgo page: %v", common.ErrService, err)
	}
	return results, nil
}

// parseResults walks the lite page, pairing each a.result-link with the
// next td.result-snippet. Links back into DuckDuckGo itself are skipped.
func parseResults(r io.Reader, max int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if max > 0 && len(results) >= max {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				href := resolveLink(attr(n, "href"))
				title := strings.TrimSpace(textContent(n))
				if href != "" && title != "" && !isInternal(href) {
					results = append(results, Result{Title: title, URL: href})
				}
				return
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = strings.Join(strings.Fields(textContent(n)), " ")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// resolveLink unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...)
// into the target URL.
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func isInternal(href string) bool {
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return true
	}
	return strings.HasSuffix(u.Host, "duckduckgo.com")
}
