package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/repository"
)

// SentinelConfig holds configuration for feed ingestion.
type SentinelConfig struct {
	FeedURL   string
	Origin    string
	UserAgent string
	MaxNew    int
}

// SentinelService discovers newly published legislation on the configured
// feed page and enqueues unseen entries as pending jobs. Dedup is by source
// URL; the pipeline itself never sees a duplicate.
type SentinelService struct {
	client  *resty.Client
	legRepo *repository.LegislationRepository
	feedURL string
	origin  string
	maxNew  int
	logger  *logger.Logger
}

// NewSentinelService creates a new sentinel service.
func NewSentinelService(legRepo *repository.LegislationRepository, cfg *SentinelConfig, log *logger.Logger) *SentinelService {
	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetTimeout(30 * time.Second)

	maxNew := cfg.MaxNew
	if maxNew <= 0 {
		maxNew = 20
	}

	return &SentinelService{
		client:  client,
		legRepo: legRepo,
		feedURL: cfg.FeedURL,
		origin:  strings.TrimRight(cfg.Origin, "/"),
		maxNew:  maxNew,
		logger:  log,
	}
}

// Ingest scrapes the feed page and inserts pending rows for entries not yet
// in the store. Returns the number of rows enqueued.
func (s *SentinelService) Ingest(ctx context.Context) (int, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.feedURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed %s: %w", s.feedURL, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return 0, fmt.Errorf("feed fetch returned HTTP %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	ingested := 0
	var walkErr error

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if ingested >= s.maxNew {
			return false
		}

		href, _ := sel.Attr("href")
		title := strings.TrimSpace(sel.Text())
		if title == "" || !s.isDetailLink(href) {
			return true
		}

		sourceURL := s.resolve(href)

		exists, err := s.legRepo.ExistsBySourceURL(ctx, sourceURL)
		if err != nil {
			walkErr = err
			return false
		}
		if exists {
			return true
		}

		leg := &domain.Legislation{
			ID:           uuid.New().String(),
			Title:        title,
			SourceURL:    sourceURL,
			Status:       domain.LegislationPending,
			DiscoveredAt: time.Now(),
		}
		if err := s.legRepo.Create(ctx, leg); err != nil {
			walkErr = err
			return false
		}

		s.logger.WithFields(logger.Fields{
			logger.FieldLegislationID: leg.ID,
			"title":                   title,
		}).Info("Discovered legislation")
		ingested++
		return true
	})

	if walkErr != nil {
		return ingested, walkErr
	}
	return ingested, nil
}

// isDetailLink filters feed anchors down to publication detail pages.
// The feed lists plenty of navigation chrome; a detail link points below the
// feed's own path and is not itself a document download.
func (s *SentinelService) isDetailLink(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Fragment != "" && u.Path == "" {
		return false
	}
	path := strings.ToLower(u.Path)
	if path == "" || path == "/" {
		return false
	}
	if strings.HasSuffix(path, ".pdf") || strings.HasSuffix(path, ".xml") {
		return false
	}
	feed, err := url.Parse(s.feedURL)
	if err != nil {
		return false
	}
	base := strings.ToLower(strings.TrimRight(feed.Path, "/"))
	return base == "" || strings.HasPrefix(path, base+"/")
}

// resolve normalizes an href against the feed origin, handling "../"
// segments and already-absolute links.
func (s *SentinelService) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(s.origin)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
