// Package wowhead backs the name lookup with the wowhead NPC pages.
// Each localized wowhead subdomain serves the NPC name as the page
// heading; unknown IDs redirect to a notFound page.
package wowhead

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"npc-localizer/internal/locale"
	"npc-localizer/internal/textutil"
)

const headingClass = "heading-size-1"

// Client fetches localized NPC names from wowhead.
type Client struct {
	userAgent  string
	httpClient *http.Client
	maxRetries int
	baseURL    string // overrides the wowhead host in tests
}

// NewClient creates a wowhead client with the given user agent and
// request timeout.
func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// Lookup resolves an NPC ID on the locale's wowhead subdomain. A
// notFound redirect, a missing page heading, or a bracketed placeholder
// name all report ok == false; transport failures after retries are
// returned as errors.
func (c *Client) Lookup(ctx context.Context, id int64, loc locale.Locale) (string, bool, error) {
	url := c.pageURL(loc, id)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*2) * time.Second
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Int64("id", id).Msg("Retrying lookup")
			select {
			case <-ctx.Done():
				return "", false, ctx.Err()
			case <-time.After(backoff):
			}
		}

		name, ok, err := c.fetch(ctx, url)
		if err == nil {
			return name, ok, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
	}

	return "", false, fmt.Errorf("lookup npc %d: %w", id, lastErr)
}

func (c *Client) pageURL(loc locale.Locale, id int64) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/%s/npc=%d", c.baseURL, loc.Subdomain, id)
	}
	return fmt.Sprintf("https://%s.wowhead.com/npc=%d", loc.Subdomain, id)
}

func (c *Client) fetch(ctx context.Context, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	// Unknown IDs redirect to the notFound page.
	if resp.Request != nil && strings.Contains(resp.Request.URL.String(), "notFound") {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("parse page: %w", err)
	}

	heading, found := findHeading(doc)
	if !found {
		return "", false, nil
	}

	name := strings.TrimSpace(heading)
	if stripped, bracketed := textutil.StripBrackets(name); bracketed {
		// Bracketed names are unverified placeholders, not translations.
		log.Debug().Str("name", textutil.Truncate(stripped, 40)).Msg("Skipping placeholder name")
		return "", false, nil
	}
	if name == "" {
		return "", false, nil
	}

	return name, true, nil
}

// findHeading returns the text of the first element carrying the page
// heading class.
func findHeading(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "class" && hasClass(attr.Val, headingClass) {
				return nodeText(n), true
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if text, found := findHeading(child); found {
			return text, found
		}
	}
	return "", false
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(nodeText(child))
	}
	return sb.String()
}
