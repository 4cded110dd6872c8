// Package catalog proxies the Google Books volumes API.
package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"paper-api/internal/client/upstream"
	"paper-api/internal/domain"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Volume 前端展示用的卷信息
type Volume struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	PageCount     int      `json:"pageCount,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	AverageRating float64  `json:"averageRating,omitempty"`
	RatingsCount  int      `json:"ratingsCount,omitempty"`
	Language      string   `json:"language,omitempty"`
	PreviewLink   string   `json:"previewLink,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
}

type SearchResult struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

type Client struct {
	baseURL string
	apiKey  string
	up      *upstream.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		up:      upstream.New("catalog", timeout),
	}
}

// Search q 直接透传给上游（支持 intitle:/inauthor: 前缀）
func (c *Client) Search(ctx context.Context, q string, max int) (*SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, domain.Validation("q is required")
	}
	if max <= 0 || max > 40 {
		max = 20
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("maxResults", strconv.Itoa(max))
	if c.apiKey != "" {
		v.Set("key", c.apiKey)
	}
	b, err := c.up.Get(ctx, c.baseURL+"/volumes?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var raw struct {
		TotalItems int         `json:"totalItems"`
		Items      []rawVolume `json:"items"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, domain.UpstreamMalformed(errors.Wrap(err, "decode volumes"))
	}
	out := &SearchResult{TotalItems: raw.TotalItems, Items: make([]Volume, 0, len(raw.Items))}
	for _, it := range raw.Items {
		out.Items = append(out.Items, it.toVolume())
	}
	return out, nil
}

func (c *Client) Volume(ctx context.Context, id string) (*Volume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Validation("volume id is required")
	}
	u := c.baseURL + "/volumes/" + url.PathEscape(id)
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}
	b, err := c.up.Get(ctx, u, nil)
	if err != nil {
		if domain.StatusOf(err) == 404 {
			return nil, domain.NotFound("volume %s not found", id)
		}
		return nil, err
	}
	var raw rawVolume
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, domain.UpstreamMalformed(errors.Wrap(err, "decode volume"))
	}
	if raw.ID == "" {
		return nil, domain.UpstreamMalformed(errors.New("volume without id"))
	}
	v := raw.toVolume()
	return &v, nil
}

type rawVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Publisher     string   `json:"publisher"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		RatingsCount  int      `json:"ratingsCount"`
		Language      string   `json:"language"`
		PreviewLink   string   `json:"previewLink"`
		InfoLink      string   `json:"infoLink"`
		ImageLinks    *struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
		} `json:"imageLinks"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
	} `json:"volumeInfo"`
}

func (r rawVolume) toVolume() Volume {
	vi := r.VolumeInfo
	v := Volume{
		ID:            r.ID,
		Title:         vi.Title,
		Authors:       vi.Authors,
		Publisher:     vi.Publisher,
		PublishedDate: vi.PublishedDate,
		Description:   vi.Description,
		PageCount:     vi.PageCount,
		Categories:    vi.Categories,
		AverageRating: vi.AverageRating,
		RatingsCount:  vi.RatingsCount,
		Language:      vi.Language,
		PreviewLink:   vi.PreviewLink,
		InfoLink:      vi.InfoLink,
	}
	if v.Authors == nil {
		v.Authors = []string{}
	}
	if vi.ImageLinks != nil {
		img := vi.ImageLinks.Thumbnail
		if img == "" {
			img = vi.ImageLinks.SmallThumbnail
		}
		v.ImageURL = SecureURL(img)
	}
	// ISBN_13 优先
	for _, id := range vi.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			v.ISBN = id.Identifier
		case "ISBN_10":
			if v.ISBN == "" {
				v.ISBN = id.Identifier
			}
		}
	}
	return v
}

// SecureURL 把 http: 开头的图片地址改成 https:
func SecureURL(u string) string {
	if strings.HasPrefix(u, "http:") {
		return "https:" + strings.TrimPrefix(u, "http:")
	}
	return u
}
