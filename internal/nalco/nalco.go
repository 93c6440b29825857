/*
Package nalco fetches the NALCO price-circular page and locates the latest
Ingots circular PDF.
*/
package nalco

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "nalcoscraper/1.0 (+https://github.com/shanehull/nalcoscraper)"

var client = &http.Client{
	Timeout: 30 * time.Second,
}

var yearPattern = regexp.MustCompile(`\d{4}`)

type pdfLink struct {
	href  string
	text  string
	score int
}

// FetchLatestPDFLink fetches the circular page and returns the most likely
// Ingots/IE07 PDF link as an absolute URL. No resolvable link is a no-fetch
// condition, not an error: the caller can still rebuild from stored data.
func FetchLatestPDFLink(pageURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", pageURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close response body for %s: %v", pageURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	links := collectPDFLinks(doc)
	if len(links) == 0 {
		return "", nil
	}

	for i := range links {
		links[i].score = scoreLink(links[i])
	}
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].score > links[j].score
	})

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}
	ref, err := url.Parse(links[0].href)
	if err != nil {
		return "", fmt.Errorf("invalid PDF link '%s': %w", links[0].href, err)
	}

	return base.ResolveReference(ref).String(), nil
}

func collectPDFLinks(doc *html.Node) []pdfLink {
	var links []pdfLink
	var f func(*html.Node)

	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if strings.HasSuffix(strings.ToLower(trimQuery(href)), ".pdf") {
					links = append(links, pdfLink{
						href: href,
						text: strings.TrimSpace(extractText(n)),
					})
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return links
}

// scoreLink ranks candidate links: the product code beats the product name,
// which beats anything with a year in it.
func scoreLink(l pdfLink) int {
	txt := strings.ToLower(l.text + " " + l.href)
	score := 0
	if strings.Contains(strings.ReplaceAll(txt, " ", ""), "ie07") {
		score += 100
	}
	if strings.Contains(txt, "ingot") {
		score += 90
	}
	if yearPattern.MatchString(txt) {
		score++
	}
	return score
}

func trimQuery(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		return href[:i]
	}
	return href
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}
