package beacon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/pkg/circuitbreaker"
	"github.com/ghi-core/backend/pkg/logger"
	"github.com/ghi-core/backend/pkg/retry"
)

// Fetcher retrieves the rendered feed document through a reader proxy.
// Fetches are bounded by the client timeout, retried with backoff, and
// guarded by a circuit breaker so a dead upstream fails fast.
type Fetcher struct {
	httpClient  *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	readerProxy string
	baseURL     string
	maxRetries  int
}

func NewFetcher(readerProxy, baseURL string, timeout time.Duration, maxRetries int) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: circuitbreaker.NewCircuitBreaker("beacon-feed", circuitbreaker.Config{
			FailureThreshold: 3,
			Timeout:          5 * time.Minute,
			Logger:           logger.Log,
		}),
		readerProxy: readerProxy,
		baseURL:     baseURL,
		maxRetries:  maxRetries,
	}
}

// Fetch returns the feed document as text. HTML responses are stripped to
// text so the block parser sees the same shape either way.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	feedURL := fmt.Sprintf("%s/%s/en/", f.readerProxy, f.baseURL)

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = f.maxRetries
	cfg.Logger = logger.Log

	return retry.DoWithResult(ctx, cfg, func() (string, error) {
		var body string
		err := f.breaker.Execute(ctx, func() error {
			var fetchErr error
			body, fetchErr = f.fetchOnce(ctx, feedURL)
			return fetchErr
		})
		return body, err
	})
}

func (f *Fetcher) fetchOnce(ctx context.Context, feedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, text/markdown, text/html")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read feed body: %w", err)
	}

	body := string(data)
	if looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		logger.Debug("Feed returned HTML, stripping to text", zap.String("url", feedURL))
		return stripHTML(body)
	}
	return body, nil
}

func looksLikeHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// stripHTML reduces an HTML document to its visible text, preserving line
// structure well enough for the block parser.
func stripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	var lines []string
	doc.Find("body").Find("h1, h2, h3, p, li, hr, a, time").Each(func(i int, s *goquery.Selection) {
		if goquery.NodeName(s) == "hr" {
			lines = append(lines, "* * *")
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "a" {
			if href, ok := s.Attr("href"); ok {
				text = fmt.Sprintf("[%s](%s)", text, href)
			}
		}
		lines = append(lines, text)
	})

	return strings.Join(lines, "\n"), nil
}
