// Package crawler fetches LH rental-housing announcement listings and
// downloads their PDF attachments. It owns all network and file I/O so
// the reconstruction core only ever sees local files.
package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Attachment is one downloadable file discovered on a detail page.
type Attachment struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	LocalPath string `json:"local_path,omitempty"`
}

// Announcement is a single listing entry with its metadata columns and
// discovered attachments.
type Announcement struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	DetailURL   string            `json:"detail_url,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`

	// payload drives a POST to the detail endpoint when the listing
	// link is a javascript call rather than a plain href.
	payload url.Values
}

// Options configures a crawl run.
type Options struct {
	ListURL   string
	DetailURL string
	OutputDir string
	Delay     time.Duration // pause between list pages
	MaxPages  int           // 0 = until pagination ends
	UserAgent string
}

// Client crawls announcement pages.
type Client struct {
	opts Options
	http *http.Client
	log  *slog.Logger
}

func New(opts Options, log *slog.Logger) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: 60 * time.Second},
		log:  log,
	}
}

// Crawl walks the paginated listing, fetching attachments per
// announcement and downloading them under OutputDir. Failures on a
// single announcement are logged and skipped; the run continues.
func (c *Client) Crawl(ctx context.Context) ([]Announcement, error) {
	var all []Announcement
	for pageIndex := 1; ; pageIndex++ {
		if c.opts.MaxPages > 0 && pageIndex > c.opts.MaxPages {
			break
		}
		c.log.Info("fetching announcement list page", "page", pageIndex)

		anns, hasNext, err := c.FetchListPage(ctx, pageIndex)
		if err != nil {
			return all, fmt.Errorf("list page %d: %w", pageIndex, err)
		}
		if len(anns) == 0 {
			c.log.Info("no announcements on page, stopping", "page", pageIndex)
			break
		}

		for i := range anns {
			ann := &anns[i]
			attachments, err := c.FetchAttachments(ctx, ann)
			if err != nil {
				c.log.Error("fetch attachments failed", "announcement", ann.ID, "error", err)
				continue
			}
			ann.Attachments = attachments
			for j := range ann.Attachments {
				path, err := c.Download(ctx, *ann, &ann.Attachments[j])
				if err != nil {
					c.log.Error("download failed", "url", ann.Attachments[j].URL, "error", err)
					continue
				}
				ann.Attachments[j].LocalPath = path
			}
			all = append(all, *ann)
		}

		if !hasNext {
			break
		}
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(c.opts.Delay):
		}
	}
	return all, nil
}

// FetchListPage retrieves and parses one listing page, reporting
// whether pagination continues past it.
func (c *Client) FetchListPage(ctx context.Context, pageIndex int) ([]Announcement, bool, error) {
	u, err := url.Parse(c.opts.ListURL)
	if err != nil {
		return nil, false, fmt.Errorf("parse list url: %w", err)
	}
	q := u.Query()
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, false, err
	}
	return ParseListPage(body, c.opts.ListURL)
}

// FetchAttachments loads an announcement's detail page and parses the
// PDF links out of it.
func (c *Client) FetchAttachments(ctx context.Context, ann *Announcement) ([]Attachment, error) {
	var body string
	var err error
	switch {
	case ann.DetailURL != "":
		body, err = c.get(ctx, ann.DetailURL)
	case ann.payload != nil:
		body, err = c.post(ctx, c.opts.DetailURL, ann.payload)
	default:
		c.log.Warn("announcement lacks detail target", "announcement", ann.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseAttachments(body, c.opts.DetailURL)
}

// Download writes an attachment to disk if missing and returns its
// local path.
func (c *Client) Download(ctx context.Context, ann Announcement, att *Attachment) (string, error) {
	dir := filepath.Join(c.opts.OutputDir, ann.Slug())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create announcement dir: %w", err)
	}
	name := att.Name
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	dest := filepath.Join(dir, sanitizeFilename(name))

	if _, err := os.Stat(dest); err == nil {
		c.log.Debug("attachment already downloaded", "path", dest)
		return dest, nil
	}

	c.log.Info("downloading attachment", "url", att.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", att.URL, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return dest, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	return c.do(req)
}

func (c *Client) post(ctx context.Context, rawURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", req.URL, resp.StatusCode)
	}
	// Some of the government servers still answer in EUC-KR; decode to
	// UTF-8 from the declared or sniffed charset before parsing.
	decoded, err := charset.NewReader(io.LimitReader(resp.Body, 10<<20), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
