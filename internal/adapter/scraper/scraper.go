package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/config"
	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/util"
)

var (
	pdfRegexp = regexp.MustCompile(`(?i)\.pdf`)
)

// Scraper finds the cause list PDFs of a court complex on the source page.
//
// Every call performs exactly one request; nothing is cached between calls.
type Scraper struct {
	cfg    *config.SourceConfig
	client *http.Client
	log    *slog.Logger
}

func NewScraper(cfg *config.SourceConfig, client *http.Client, log *slog.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: client,
		log:    log.With(slog.String("item", "Scraper")),
	}
}

// Discover fetches the cause list page and returns the PDF links whose anchor
// text contains court, compared case-insensitively.
//
// The date only reaches the server when source.date_param is configured.
func (s *Scraper) Discover(ctx context.Context, date time.Time, court string) ([]entity.PdfLink, error) {
	if strings.TrimSpace(court) == "" {
		return nil, common.ErrInvalidCourt
	}

	pageURL, err := s.pageURL(date)
	if err != nil {
		return nil, &common.FetchError{Kind: common.KindTransport, URL: s.cfg.CauseListURL, Err: err}
	}

	log := s.log.With(slog.String("url", pageURL), slog.String("court", court))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &common.FetchError{Kind: common.KindTransport, URL: pageURL, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error("Cannot fetch cause list page", slog.Any("error", err))

		return nil, &common.FetchError{Kind: common.KindTransport, URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("Bad cause list page status", slog.Int("status", resp.StatusCode))

		return nil, &common.FetchError{Kind: common.KindStatus, URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &common.FetchError{Kind: common.KindParse, URL: pageURL, Err: err}
	}

	links, err := ParseLinks(body, s.cfg.BaseURL, court)
	if err != nil {
		log.Error("Cannot parse cause list page", slog.Any("error", err))

		return nil, &common.FetchError{Kind: common.KindParse, URL: pageURL, Err: err}
	}

	log.Info("Found cause lists", slog.Int("count", len(links)))

	return links, nil
}

func (s *Scraper) pageURL(date time.Time) (string, error) {
	if s.cfg.DateParam == "" {
		return s.cfg.CauseListURL, nil
	}

	u, err := url.Parse(s.cfg.CauseListURL)
	if err != nil {
		return "", fmt.Errorf("cannot parse cause list url: %w", err)
	}

	q := u.Query()
	q.Set(s.cfg.DateParam, date.Format(entity.DateLayout))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ParseLinks extracts PDF anchors from an HTML page. Anchors without visible
// text are skipped because they cannot be attributed to a judge. An empty
// court keeps every PDF anchor.
func ParseLinks(r io.Reader, origin, court string) ([]entity.PdfLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse html: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(court))
	links := []entity.PdfLink{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !pdfRegexp.MatchString(href) {
			return
		}

		text := util.NormSpace(a.Text())
		if text == "" {
			return
		}

		if needle != "" && !strings.Contains(strings.ToLower(text), needle) {
			return
		}

		links = append(links, entity.PdfLink{
			Name:  text,
			URL:   AbsoluteURL(origin, href),
			Judge: text,
		})
	})

	return links, nil
}

// AbsoluteURL leaves hrefs with a scheme untouched and prefixes the rest with
// origin, adding a slash only when href does not start with one.
func AbsoluteURL(origin, href string) string {
	href = strings.TrimSpace(href)

	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		return href
	}

	origin = strings.TrimRight(origin, "/")

	if strings.HasPrefix(href, "//") {
		if o, err := url.Parse(origin); err == nil && o.Scheme != "" {
			return o.Scheme + ":" + href
		}

		return "https:" + href
	}

	if strings.HasPrefix(href, "/") {
		return origin + href
	}

	return origin + "/" + href
}
