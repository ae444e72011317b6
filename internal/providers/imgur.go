package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/linkembed/backend/internal/embed"
)

const defaultImgurAPIBase = "https://api.imgur.com/3"

type imgurType int

const (
	imgurUnknown imgurType = iota
	imgurImage
	imgurAlbum
	imgurGallery
)

// errImgurAuth marks a rejected API credential; the resolver downgrades to
// the page scrape and the provider remembers the fault for a cooldown window.
var errImgurAuth = errors.New("imgur: authorization rejected")

// ImgurProvider recognizes imgur.com URLs. It carries the API client id and
// the shared last-faulted timestamp that suppresses doomed API calls.
type ImgurProvider struct {
	clientID string
	apiBase  string

	mu          sync.Mutex
	lastFaulted time.Time
}

// NewImgurProvider returns a provider using the given API client id. An empty
// id disables the API path; matched URLs then resolve by page scrape only.
func NewImgurProvider(clientID string) *ImgurProvider {
	return &ImgurProvider{clientID: clientID, apiBase: defaultImgurAPIBase}
}

func (p *ImgurProvider) CanHandle(u *url.URL) bool {
	switch strings.ToLower(u.Hostname()) {
	case "imgur.com", "www.imgur.com", "m.imgur.com", "i.imgur.com":
		typ, hash := classifyImgurURL(u)
		return typ != imgurUnknown && hash != ""
	}
	return false
}

func (p *ImgurProvider) NewMetadata(u *url.URL) embed.Metadata {
	typ, hash := classifyImgurURL(u)
	return &ImgurMetadata{
		provider: p,
		url:      u,
		typ:      typ,
		hash:     hash,
	}
}

// classifyImgurURL inspects the URL structure and extracts the content hash.
func classifyImgurURL(u *url.URL) (imgurType, string) {
	if strings.ToLower(u.Hostname()) == "i.imgur.com" {
		base := path.Base(u.Path)
		if hash := strings.TrimSuffix(base, path.Ext(base)); hash != "" && hash != "/" && hash != "." {
			return imgurImage, hash
		}
		return imgurUnknown, ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(segments) == 2 && segments[0] == "a":
		return imgurAlbum, segments[1]
	case len(segments) == 2 && segments[0] == "gallery":
		return imgurGallery, segments[1]
	case len(segments) == 1 && segments[0] != "":
		hash := strings.TrimSuffix(segments[0], path.Ext(segments[0]))
		return imgurImage, hash
	}
	return imgurUnknown, ""
}

func (p *ImgurProvider) faulted(cooldown time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.lastFaulted.IsZero() && time.Since(p.lastFaulted) < cooldown
}

// recordFault remembers the most recent API fault. Last write wins; the
// timestamp only gates an optimization, never correctness.
func (p *ImgurProvider) recordFault() {
	p.mu.Lock()
	p.lastFaulted = time.Now()
	p.mu.Unlock()
}

// ImgurMetadata resolves an image, album or gallery through the imgur read
// API, degrading to the generic page scrape on soft misses and credential
// faults.
type ImgurMetadata struct {
	provider *ImgurProvider
	url      *url.URL
	typ      imgurType
	hash     string
	once     embed.Once
}

func (m *ImgurMetadata) Fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	return m.once.Do(func() (*embed.EmbedData, error) {
		return m.fetch(ctx, req)
	})
}

func (m *ImgurMetadata) fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	if m.provider.clientID != "" &&
		!m.provider.faulted(req.Service.ErrorResponseCacheAge()) &&
		m.typ != imgurUnknown && m.hash != "" {

		var data *embed.EmbedData
		var err error
		switch m.typ {
		case imgurImage:
			data, err = m.fetchImage(ctx, req, "/image/"+m.hash)
		case imgurAlbum:
			data, err = m.fetchAlbum(ctx, req, "/album/"+m.hash)
		case imgurGallery:
			data, err = m.fetchGallery(ctx, req)
		}

		switch {
		case err == nil:
			return data, nil
		case errors.Is(err, errImgurAuth):
			m.provider.recordFault()
		case errors.Is(err, embed.ErrUpstreamEmpty):
			// fall through to the page scrape
		default:
			return nil, err
		}
	}

	return m.scrape(ctx, req)
}

// scrape runs the generic HTML resolver against the original URL and forces
// the single-image shape the imgur pages render as.
func (m *ImgurMetadata) scrape(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	data, err := NewHTMLMetadata(m.url).Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	data.Type = embed.SingleImage
	if data.MetadataImage != nil && len(data.Medias) == 0 {
		data.Medias = append(data.Medias, *data.MetadataImage)
	}
	return data, nil
}

func (m *ImgurMetadata) fetchImage(ctx context.Context, req *embed.RequestContext, endpoint string) (*embed.EmbedData, error) {
	var envelope struct {
		Data *imgurImageResource `json:"data"`
	}
	if err := m.apiGet(ctx, req, endpoint, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil || envelope.Data.Link == "" {
		return nil, embed.ErrUpstreamEmpty
	}
	return imgurImageData(envelope.Data), nil
}

func (m *ImgurMetadata) fetchAlbum(ctx context.Context, req *embed.RequestContext, endpoint string) (*embed.EmbedData, error) {
	var envelope struct {
		Data *imgurAlbumResource `json:"data"`
	}
	if err := m.apiGet(ctx, req, endpoint, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil || len(envelope.Data.Images) == 0 {
		return nil, embed.ErrUpstreamEmpty
	}
	return imgurAlbumData(envelope.Data), nil
}

// fetchGallery tries the gallery-album endpoint first. A 404 there is the
// documented signal that the hash names a gallery image, so exactly one
// follow-up call goes to the gallery-image endpoint; any other failure is
// final.
func (m *ImgurMetadata) fetchGallery(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	data, err := m.fetchAlbum(ctx, req, "/gallery/album/"+m.hash)
	if errors.Is(err, errImgurNotFound) {
		return m.fetchImage(ctx, req, "/gallery/image/"+m.hash)
	}
	return data, err
}

var errImgurNotFound = errors.New("imgur: resource not found")

func (m *ImgurMetadata) apiGet(ctx context.Context, req *embed.RequestContext, endpoint string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.provider.apiBase+endpoint, nil)
	if err != nil {
		return embed.UpstreamError("imgur api", err)
	}
	httpReq.Header.Set("Authorization", "Client-ID "+m.provider.clientID)
	httpReq.Header.Set("Accept", "application/json")

	res, err := req.Service.HTTPClient().Do(httpReq)
	if err != nil {
		return embed.UpstreamError("imgur api", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return errImgurAuth
	case http.StatusNotFound:
		return errImgurNotFound
	default:
		return embed.UpstreamStatusError("imgur api", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return embed.UpstreamError("imgur api decode", err)
	}
	return nil
}

type imgurImageResource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Animated    bool   `json:"animated"`
	NSFW        *bool  `json:"nsfw"`
	Link        string `json:"link"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type imgurAlbumResource struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Cover       string               `json:"cover"`
	Images      []imgurImageResource `json:"images"`
}

func (im *imgurImageResource) toMedia() embed.Media {
	policy := embed.RestrictionUnknown
	if im.NSFW != nil {
		if *im.NSFW {
			policy = embed.Restricted
		} else {
			policy = embed.RestrictionNone
		}
	}

	typ := embed.ImageMedia
	if im.Animated {
		typ = embed.VideoMedia
	}

	return embed.Media{
		Type:              typ,
		Thumbnail:         &embed.ImageInfo{URL: im.Link, Width: im.Width, Height: im.Height},
		RawURL:            im.Link,
		Location:          "https://imgur.com/" + im.ID,
		RestrictionPolicy: policy,
	}
}

func imgurImageData(im *imgurImageResource) *embed.EmbedData {
	media := im.toMedia()

	data := embed.NewEmbedData(media.Location)
	data.Title = im.Title
	data.Description = im.Description
	data.Type = embed.SingleImage
	if im.Animated {
		data.Type = embed.SingleVideo
	}
	data.ProviderName = "Imgur"
	data.ProviderURL = "https://imgur.com"
	data.RestrictionPolicy = media.RestrictionPolicy
	data.MetadataImage = &media
	data.Medias = []embed.Media{media}
	return data
}

// imgurAlbumData maps an album onto the cover image, rewriting the URL to the
// album permalink. Multi-image albums become MixedContent carrying every
// non-cover image in the album's order.
func imgurAlbumData(album *imgurAlbumResource) *embed.EmbedData {
	coverIdx := 0
	for i := range album.Images {
		if album.Images[i].ID == album.Cover {
			coverIdx = i
			break
		}
	}

	data := imgurImageData(&album.Images[coverIdx])
	data.URL = "https://imgur.com/a/" + album.ID
	if album.Title != "" {
		data.Title = album.Title
	}
	if album.Description != "" {
		data.Description = album.Description
	}

	if len(album.Images) > 1 {
		data.Type = embed.MixedContent
		medias := make([]embed.Media, 0, len(album.Images)-1)
		for i := range album.Images {
			if i == coverIdx {
				continue
			}
			medias = append(medias, album.Images[i].toMedia())
		}
		data.Medias = medias
	}

	return data
}
