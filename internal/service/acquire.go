package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/ledongthuc/pdf"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/storage"
)

// ErrResourceNotFound means the scraped page holds no qualifying document link.
var ErrResourceNotFound = errors.New("no qualifying document link found")

// ErrExtraction means the document could not be fetched or its text extracted.
var ErrExtraction = errors.New("document extraction failed")

// Acquirer locates and extracts the source text for one legislation.
// Implemented by AcquireService; faked in pipeline tests.
type Acquirer interface {
	ResolveDocumentURL(ctx context.Context, pageURL string) (string, error)
	// ExtractText returns the plain text and, when archiving is enabled
	// and succeeded, the archive object URL.
	ExtractText(ctx context.Context, docURL, legislationID string) (string, string, error)
}

// AcquireConfig holds configuration for the acquisition service.
type AcquireConfig struct {
	Origin       string
	UserAgent    string
	LocaleMarker string
	PageTimeout  time.Duration
	DocTimeout   time.Duration
}

// AcquireService fetches the publication page, picks the English PDF variant,
// downloads it and extracts plain text. When an archive is configured the
// raw PDF is uploaded before extraction.
type AcquireService struct {
	pageClient   *resty.Client
	docClient    *resty.Client
	origin       string
	localeMarker string
	archive      storage.ObjectStorage // nil disables archiving
	log          *logger.Logger
}

// NewAcquireService creates a new acquisition service.
// Parameters:
//   - cfg: acquisition configuration.
//   - archive: object storage for raw PDFs; nil disables archiving.
//   - log: structured logger.
//
// Returns:
//   - *AcquireService: initialized service.
func NewAcquireService(cfg *AcquireConfig, archive storage.ObjectStorage, log *logger.Logger) *AcquireService {
	pageClient := resty.New()
	pageClient.SetHeader("User-Agent", cfg.UserAgent)
	pageClient.SetTimeout(cfg.PageTimeout)

	docClient := resty.New()
	docClient.SetHeader("User-Agent", cfg.UserAgent)
	docClient.SetTimeout(cfg.DocTimeout)

	return &AcquireService{
		pageClient:   pageClient,
		docClient:    docClient,
		origin:       strings.TrimRight(cfg.Origin, "/"),
		localeMarker: cfg.LocaleMarker,
		archive:      archive,
		log:          log,
	}
}

// ResolveDocumentURL fetches the publication page and returns the absolute
// URL of the first hyperlink whose path ends in .pdf and carries the
// configured locale marker. Relative links are resolved against the
// configured origin. Returns ErrResourceNotFound when no anchor qualifies.
func (s *AcquireService) ResolveDocumentURL(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.pageClient.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page %s: %w", pageURL, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("page fetch returned HTTP %d for %s", resp.StatusCode(), pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("failed to parse page %s: %w", pageURL, err)
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if s.qualifies(href) {
			found = href
			return false
		}
		return true
	})

	if found == "" {
		return "", fmt.Errorf("%w on page %s", ErrResourceNotFound, pageURL)
	}

	return s.resolve(found), nil
}

// qualifies checks the anchor target path for the PDF extension and the
// English locale marker.
func (s *AcquireService) qualifies(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	if !strings.HasSuffix(path, ".pdf") {
		return false
	}
	return strings.Contains(path, strings.ToLower(s.localeMarker))
}

// resolve makes an href absolute against the configured origin. Relative
// forms, including "../" segments, are normalized per RFC 3986.
func (s *AcquireService) resolve(href string) string {
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

// ExtractText downloads the document and extracts its plain text. A non-PDF
// or corrupt payload fails with ErrExtraction. When archiving is enabled the
// raw bytes are stored first and the archive object URL returned; an archive
// failure is logged, not fatal, and yields an empty archive URL.
func (s *AcquireService) ExtractText(ctx context.Context, docURL, legislationID string) (string, string, error) {
	resp, err := s.docClient.R().SetContext(ctx).Get(docURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: fetch %s: %v", ErrExtraction, docURL, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", "", fmt.Errorf("%w: fetch %s: HTTP %d", ErrExtraction, docURL, resp.StatusCode())
	}

	data := resp.Body()

	archiveURL := ""
	if s.archive != nil {
		archiveURL = s.archiveDocument(ctx, legislationID, data)
	}

	text, err := extractPDFText(data)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrExtraction, docURL, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("%w: %s: document yielded no text", ErrExtraction, docURL)
	}

	return text, archiveURL, nil
}

// archiveDocument stores the raw PDF once per legislation and returns the
// object URL. A retried job finds the object already present and skips the
// upload. Archive failures are logged, never fatal.
func (s *AcquireService) archiveDocument(ctx context.Context, legislationID string, data []byte) string {
	key := fmt.Sprintf("documents/%s.pdf", legislationID)
	log := s.log.WithField(logger.FieldLegislationID, legislationID)

	if exists, err := s.archive.Exists(ctx, key); err == nil && exists {
		return s.archive.GetURL(key)
	}
	if err := s.archive.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		log.WithError(err).Warn("Failed to archive document")
		return ""
	}
	log.WithField("archive_url", s.archive.GetURL(key)).Info("Document archived")
	return s.archive.GetURL(key)
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", err
	}
	return b.String(), nil
}
