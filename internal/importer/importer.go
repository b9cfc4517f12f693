package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

// maxPageBytes caps how much of a page is read before parsing.
const maxPageBytes = 5 << 20

var (
	ErrNoContent = errors.New("page has no readable content")
	// ErrBlockedAddress is returned for pages that resolve to loopback,
	// private, link-local or otherwise non-public addresses.
	ErrBlockedAddress = errors.New("address is not public")
)

// Page is the readable part of a web page, ready to drop into the form.
type Page struct {
	Title   string
	Content string
}

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet.
// Connections to non-public addresses are refused at dial time, which also
// covers redirects and hosts that resolve to internal addresses.
type DefaultScraper struct {
	transport http.RoundTripper
}

func newScraper(allowPrivate bool) *DefaultScraper {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would hide the real destination from the dial check.
	tr.Proxy = nil
	tr.DialContext = dialer.DialContext
	return &DefaultScraper{transport: tr}
}

func (s *DefaultScraper) Scrape(pageURL string, timeout time.Duration) (*readability.Article, error) {
	client := &http.Client{Transport: s.transport, Timeout: timeout}
	resp, err := client.Get(pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("unsupported content type %q", ct)
	}

	art, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), resp.Request.URL)
	if err != nil {
		return nil, err
	}
	return &art, nil
}

// publicOnly is a net.Dialer Control hook; address is the resolved ip:port.
func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

type Importer struct {
	scraper Scraper
	logger  *zap.Logger
	timeout time.Duration
}

func New(logger *zap.Logger) *Importer {
	return &Importer{
		scraper: newScraper(false),
		logger:  logger,
		timeout: DefaultTimeout,
	}
}

// Import downloads rawURL and reduces it to a title and plain-text content.
func (im *Importer) Import(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("import %q: invalid url", rawURL)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := im.logger.With(zap.String("url", u.String()))
	logger.Info("Downloading")

	art, err := im.scraper.Scrape(u.String(), im.timeout)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", rawURL, err)
	}

	text, err := htmlToText(art.Content)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", rawURL, err)
	}
	if text == "" {
		text = strings.TrimSpace(art.Excerpt)
	}
	if text == "" {
		return nil, fmt.Errorf("import %q: %w", rawURL, ErrNoContent)
	}

	title := strings.TrimSpace(art.Title)
	if title == "" {
		title = u.Host
	}

	logger.Info("Import complete", zap.String("title", title), zap.Int("chars", len(text)))
	return &Page{Title: title, Content: text}, nil
}

// htmlToText keeps one paragraph per block element, separated by blank lines.
func htmlToText(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var paras []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are picked up by their innermost match.
		if s.Find("p, li, blockquote, pre").Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			paras = append(paras, t)
		}
	})
	if len(paras) == 0 {
		if t := strings.Join(strings.Fields(doc.Text()), " "); t != "" {
			paras = append(paras, t)
		}
	}
	return strings.Join(paras, "\n\n"), nil
}
