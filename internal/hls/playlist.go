package hls

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

// Segment is one media chunk of a parsed playlist. Index addresses the
// result buffer; Sequence is the HLS media sequence number used for IV
// derivation.
type Segment struct {
	Index    int
	Sequence uint64
	URL      string
	Duration float64
}

// EncryptionSpec is the unresolved key reference extracted from a playlist.
type EncryptionSpec struct {
	Method string
	URI    string
	IV     []byte // nil when the playlist leaves the IV implicit
}

// MediaPlaylist is the ordered segment sequence for one episode, immutable
// once parsed.
type MediaPlaylist struct {
	URL        string
	Segments   []Segment
	Encryption *EncryptionSpec
}

// Loader fetches and parses HLS playlists.
type Loader struct {
	httpClient *http.Client
}

func NewLoader(httpClient *http.Client) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Loader{httpClient: httpClient}
}

// Load fetches playlistURL and returns its media playlist. A master playlist
// is resolved to its best variant (highest resolution, ties broken by
// bandwidth) and re-fetched; one level of indirection only.
func (l *Loader) Load(ctx context.Context, playlistURL string) (*MediaPlaylist, error) {
	data, err := l.fetchText(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(data), true)
	if err != nil {
		return nil, &model.ParseError{Source: playlistURL, Err: err}
	}

	if listType == m3u8.MASTER {
		master := playlist.(*m3u8.MasterPlaylist)
		variantURL, err := bestVariantURL(playlistURL, master)
		if err != nil {
			return nil, err
		}
		data, err = l.fetchText(ctx, variantURL)
		if err != nil {
			return nil, err
		}
		playlist, listType, err = m3u8.DecodeFrom(bytes.NewReader(data), true)
		if err != nil {
			return nil, &model.ParseError{Source: variantURL, Err: err}
		}
		if listType != m3u8.MEDIA {
			return nil, &model.ParseError{
				Source: variantURL,
				Err:    fmt.Errorf("variant resolved to another master playlist"),
			}
		}
		playlistURL = variantURL
	}

	media, ok := playlist.(*m3u8.MediaPlaylist)
	if !ok {
		return nil, &model.ParseError{Source: playlistURL, Err: fmt.Errorf("unsupported playlist type")}
	}
	return buildMediaPlaylist(playlistURL, media)
}

func (l *Loader) fetchText(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: err}
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{URL: rawURL, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: err}
	}
	return data, nil
}

func bestVariantURL(masterURL string, master *m3u8.MasterPlaylist) (string, error) {
	var best *m3u8.Variant
	bestHeight := -1
	for _, v := range master.Variants {
		if v == nil || strings.TrimSpace(v.URI) == "" {
			continue
		}
		height := resolutionHeight(v.Resolution)
		switch {
		case best == nil,
			height > bestHeight,
			height == bestHeight && v.Bandwidth > best.Bandwidth:
			best = v
			bestHeight = height
		}
	}
	if best == nil {
		return "", &model.ParseError{
			Source: masterURL,
			Err:    fmt.Errorf("master playlist has no usable variants"),
		}
	}
	return resolveReference(masterURL, best.URI)
}

func resolutionHeight(resolution string) int {
	_, heightStr, ok := strings.Cut(resolution, "x")
	if !ok {
		return 0
	}
	height, err := strconv.Atoi(strings.TrimSpace(heightStr))
	if err != nil {
		return 0
	}
	return height
}

func buildMediaPlaylist(playlistURL string, media *m3u8.MediaPlaylist) (*MediaPlaylist, error) {
	out := &MediaPlaylist{URL: playlistURL}

	key := media.Key
	for _, seg := range media.Segments {
		if seg == nil {
			continue
		}
		if key == nil && seg.Key != nil {
			key = seg.Key
		}
		segURL, err := resolveReference(playlistURL, seg.URI)
		if err != nil {
			return nil, err
		}
		out.Segments = append(out.Segments, Segment{
			Index:    len(out.Segments),
			Sequence: media.SeqNo + uint64(len(out.Segments)),
			URL:      segURL,
			Duration: seg.Duration,
		})
	}
	if len(out.Segments) == 0 {
		return nil, &model.ParseError{Source: playlistURL, Err: fmt.Errorf("playlist has no segments")}
	}

	if key != nil {
		spec, err := encryptionSpec(playlistURL, key)
		if err != nil {
			return nil, err
		}
		out.Encryption = spec
	}
	return out, nil
}

func encryptionSpec(playlistURL string, key *m3u8.Key) (*EncryptionSpec, error) {
	method := strings.ToUpper(strings.TrimSpace(key.Method))
	switch method {
	case "", "NONE":
		return nil, nil
	case "AES-128":
	default:
		return nil, &model.ParseError{
			Source: playlistURL,
			Err:    fmt.Errorf("unsupported encryption method %q", key.Method),
		}
	}

	keyURL, err := resolveReference(playlistURL, key.URI)
	if err != nil {
		return nil, err
	}
	spec := &EncryptionSpec{Method: method, URI: keyURL}

	if raw := strings.TrimSpace(key.IV); raw != "" {
		hexIV := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
		iv, err := hex.DecodeString(hexIV)
		if err != nil || len(iv) != 16 {
			return nil, &model.ParseError{
				Source: playlistURL,
				Err:    fmt.Errorf("malformed IV attribute %q", raw),
			}
		}
		spec.IV = iv
	}
	return spec, nil
}

func resolveReference(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", &model.ParseError{Source: base, Err: err}
	}
	refURL, err := baseURL.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", &model.ParseError{Source: base, Err: fmt.Errorf("resolve %q: %w", ref, err)}
	}
	return refURL.String(), nil
}
