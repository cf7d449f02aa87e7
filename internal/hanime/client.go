package hanime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

const (
	DefaultAPIBaseURL = "https://hanime.tv/api/v8"
	VideoPageBaseURL  = "https://hanime.tv/videos/hentai"
)

var slugPattern = regexp.MustCompile(`^https?://hanime\.tv/videos/hentai/([A-Za-z0-9]+(?:-[A-Za-z0-9]+)*)/?$`)

// SlugFromURL validates an episode page URL and extracts its slug.
func SlugFromURL(pageURL string) (string, error) {
	m := slugPattern.FindStringSubmatch(strings.TrimSpace(pageURL))
	if m == nil {
		return "", &model.ParseError{
			Source: "page URL",
			Err:    fmt.Errorf("%q does not match %s/<slug>", pageURL, VideoPageBaseURL),
		}
	}
	return m[1], nil
}

// PageURL builds the canonical episode page URL for a slug.
func PageURL(slug string) string {
	return VideoPageBaseURL + "/" + slug
}

// Client resolves episode metadata from the hanime.tv JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// apiVideo mirrors the subset of the video endpoint payload the resolver
// needs. Numeric fields arrive as either strings or numbers depending on the
// server, so they decode through flexNumber.
type apiVideo struct {
	HentaiVideo struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"hentai_video"`
	HentaiFranchise struct {
		Title string `json:"title"`
	} `json:"hentai_franchise"`
	HentaiFranchiseHentaiVideos []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"hentai_franchise_hentai_videos"`
	VideosManifest struct {
		Servers []struct {
			Streams []apiStream `json:"streams"`
		} `json:"servers"`
	} `json:"videos_manifest"`
}

type apiStream struct {
	Height      flexNumber `json:"height"`
	Width       flexNumber `json:"width"`
	FilesizeMBs flexNumber `json:"filesize_mbs"`
	URL         string     `json:"url"`
}

// flexNumber tolerates the API's habit of quoting some numeric fields.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

// Resolve fetches the video manifest for a slug and returns its descriptor.
// The first server in the manifest is authoritative, matching the site's own
// player behavior.
func (c *Client) Resolve(ctx context.Context, slug string) (*StreamDescriptor, error) {
	endpoint := fmt.Sprintf("%s/video?id=%s", c.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.FetchError{URL: endpoint, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{URL: endpoint, Status: resp.StatusCode}
	}

	var payload apiVideo
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &model.ParseError{Source: "video API payload", Err: err}
	}

	title := strings.TrimSpace(payload.HentaiFranchise.Title)
	if title == "" {
		title = strings.TrimSpace(payload.HentaiVideo.Name)
	}
	if title == "" {
		return nil, &model.ParseError{
			Source: "video API payload",
			Err:    fmt.Errorf("no title for %s", slug),
		}
	}

	desc := &StreamDescriptor{
		Slug:  slug,
		Title: title,
	}
	if payload.HentaiVideo.Slug != "" {
		desc.Slug = payload.HentaiVideo.Slug
	}

	for _, ep := range payload.HentaiFranchiseHentaiVideos {
		if ep.Slug == "" {
			continue
		}
		desc.Episodes = append(desc.Episodes, Episode{Slug: ep.Slug, Name: ep.Name})
	}

	if len(payload.VideosManifest.Servers) == 0 {
		return nil, &model.NoStreamError{Slug: slug}
	}
	for _, s := range payload.VideosManifest.Servers[0].Streams {
		desc.Variants = append(desc.Variants, Variant{
			Height:      int(s.Height),
			Width:       int(s.Width),
			FilesizeMBs: float64(s.FilesizeMBs),
			URL:         strings.TrimSpace(s.URL),
		})
	}

	return desc, nil
}
