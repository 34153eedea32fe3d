package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/adigiz/leadgen/internal/model"
)

// Config tunes the renderer feed client.
type Config struct {
	BaseURL           string  // renderer service base URL
	TimeoutSecs       int     // per-request timeout
	RequestsPerSecond float64 // pacing between feed page fetches
	MaxPages          int     // upper bound on feed pages per run
}

// FeedClient fetches rendered results-feed HTML from the renderer service
// and parses listing cards out of it.
type FeedClient struct {
	http     *http.Client
	baseURL  string
	limiter  *rate.Limiter
	maxPages int
	retry    retryPolicy
}

// NewFeedClient creates a feed client from config.
func NewFeedClient(cfg Config) *FeedClient {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 0.5
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	return &FeedClient{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		maxPages: maxPages,
		retry:    defaultRetryPolicy(),
	}
}

// Extract fetches feed pages until one comes back empty or maxPages is hit.
func (c *FeedClient) Extract(ctx context.Context, target model.SearchTarget, query string) ([]model.RawBusinessRecord, error) {
	log := zap.L().With(
		zap.String("component", "collector.feed"),
		zap.String("target", target.String()),
	)

	var all []model.RawBusinessRecord
	for page := 0; page < c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "collector: rate limit wait")
		}

		pageURL := c.feedURL(target, query, page)
		records, err := fetchWithRetry(ctx, c.retry, func(ctx context.Context) ([]model.RawBusinessRecord, error) {
			return c.fetchPage(ctx, pageURL)
		})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)
		log.Debug("collector: fetched feed page",
			zap.Int("page", page),
			zap.Int("records", len(records)),
		)
	}

	log.Info("collector: extraction complete", zap.Int("records", len(all)))
	return all, nil
}

func (c *FeedClient) feedURL(target model.SearchTarget, query string, page int) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	if !target.Known() {
		lat, lng, zoom := target.LatLngZoom()
		q.Set("ll", fmt.Sprintf("%f,%f", lat, lng))
		q.Set("z", strconv.Itoa(zoom))
	}
	return c.baseURL + "/render?" + q.Encode()
}

func (c *FeedClient) fetchPage(ctx context.Context, feedURL string) ([]model.RawBusinessRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "collector: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: fetch %s", feedURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, url: feedURL}
	}

	return ParseFeed(resp.Body)
}

// phoneRe matches Indonesian phone formats as they appear in listing cards.
var phoneRe = regexp.MustCompile(`(?:\+62|062|08)[\d\s-]{7,}`)

// ParseFeed extracts listing cards from rendered results-feed HTML.
// Cards live under div[role=feed] as div[role=article]; the business name is
// the card's aria-label, the outbound link is the first anchor, rating and
// review count sit in dedicated spans, and the info rows carry the address
// and phone separated by middle dots.
func ParseFeed(r io.Reader) ([]model.RawBusinessRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "collector: parse feed html")
	}

	var records []model.RawBusinessRecord
	doc.Find(`div[role="feed"] div[role="article"]`).Each(func(_ int, card *goquery.Selection) {
		rec := model.RawBusinessRecord{
			BusinessName:    strings.TrimSpace(card.AttrOr("aria-label", "")),
			Rating:          strings.TrimSpace(card.Find("span.MW4etd").First().Text()),
			ReviewCountText: strings.TrimSpace(card.Find("span.UY7F9").First().Text()),
			ExternalURL:     card.Find("a[href]").First().AttrOr("href", ""),
		}

		card.Find("div.W4Efsd").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if addr := addressFromRow(row.Text()); addr != "" {
				rec.Address = &addr
				return false
			}
			return true
		})
		if m := phoneRe.FindString(card.Text()); m != "" {
			rec.Phone = strings.TrimSpace(m)
		}

		records = append(records, rec)
	})

	return records, nil
}

// addressFromRow picks the address part out of an info row. Rows look like
// "Restaurant · Jl. Braga No.99, Bandung" with the address last; rows
// without a street marker are category/status lines and yield nothing.
func addressFromRow(text string) string {
	parts := strings.Split(text, "·")
	candidate := strings.TrimSpace(parts[len(parts)-1])
	lower := strings.ToLower(candidate)
	if strings.HasPrefix(lower, "jl") || strings.HasPrefix(lower, "jalan") || strings.Contains(candidate, ",") {
		return candidate
	}
	return ""
}
