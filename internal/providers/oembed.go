package providers

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/linkembed/backend/internal/embed"
)

// oEmbedEndpoint maps a set of hosts onto the oEmbed endpoint serving them.
type oEmbedEndpoint struct {
	hosts    []string
	endpoint string
}

var oEmbedEndpoints = []oEmbedEndpoint{
	{hosts: []string{"www.youtube.com", "youtube.com", "youtu.be"}, endpoint: "https://www.youtube.com/oembed"},
	{hosts: []string{"vimeo.com", "www.vimeo.com"}, endpoint: "https://vimeo.com/api/oembed.json"},
	{hosts: []string{"www.flickr.com", "flickr.com", "flic.kr"}, endpoint: "https://www.flickr.com/services/oembed"},
}

// OEmbedProxyProvider matches services exposing a standard oEmbed endpoint
// and proxies the consumer URL through it.
type OEmbedProxyProvider struct{}

func (OEmbedProxyProvider) CanHandle(u *url.URL) bool {
	return lookupOEmbedEndpoint(u) != ""
}

func (OEmbedProxyProvider) NewMetadata(u *url.URL) embed.Metadata {
	endpoint := lookupOEmbedEndpoint(u) + "?url=" + url.QueryEscape(u.String())
	return NewOEmbedProxyMetadata(u.String(), endpoint)
}

func lookupOEmbedEndpoint(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	for _, e := range oEmbedEndpoints {
		for _, h := range e.hosts {
			if host == h {
				return e.endpoint
			}
		}
	}
	return ""
}

// OEmbedProxyMetadata fetches a discovered oEmbed endpoint, following
// redirects to completion, and projects the flat response document onto the
// normalized model.
type OEmbedProxyMetadata struct {
	url       string
	oEmbedURL string
	once      embed.Once
}

// NewOEmbedProxyMetadata returns a resolver for the given consumer URL and
// its oEmbed endpoint.
func NewOEmbedProxyMetadata(rawURL, oEmbedURL string) *OEmbedProxyMetadata {
	return &OEmbedProxyMetadata{url: rawURL, oEmbedURL: oEmbedURL}
}

func (m *OEmbedProxyMetadata) Fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	return m.once.Do(func() (*embed.EmbedData, error) {
		return m.fetch(ctx, req)
	})
}

func (m *OEmbedProxyMetadata) fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.oEmbedURL, nil)
	if err != nil {
		return nil, embed.UpstreamError("oembed fetch", err)
	}

	// The shared client follows the endpoint's redirect chain to completion.
	res, err := req.Service.HTTPClient().Do(httpReq)
	if err != nil {
		return nil, embed.UpstreamError("oembed fetch", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, embed.UpstreamStatusError("oembed fetch", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, embed.UpstreamError("oembed read", err)
	}

	var values map[string]any
	if strings.Contains(res.Header.Get("Content-Type"), "xml") {
		values, err = parseFlatXML(body)
	} else {
		err = json.Unmarshal(body, &values)
	}
	if err != nil {
		return nil, embed.UpstreamError("oembed decode", err)
	}

	return m.project(values), nil
}

// project maps the recognized oEmbed keys onto EmbedData. Unrecognized keys
// are ignored and missing optional keys leave fields unset.
func (m *OEmbedProxyMetadata) project(values map[string]any) *embed.EmbedData {
	data := embed.NewEmbedData(m.url)

	data.Title = stringValue(values, "title")
	data.AuthorName = stringValue(values, "author_name")
	data.AuthorURL = stringValue(values, "author_url")
	data.ProviderName = stringValue(values, "provider_name")
	data.ProviderURL = stringValue(values, "provider_url")
	data.CacheAge = intValue(values, "cache_age")

	if thumb := stringValue(values, "thumbnail_url"); thumb != "" {
		data.MetadataImage = &embed.Media{
			Type: embed.ImageMedia,
			Thumbnail: &embed.ImageInfo{
				URL:    thumb,
				Width:  intValue(values, "thumbnail_width"),
				Height: intValue(values, "thumbnail_height"),
			},
		}
	}

	switch stringValue(values, "type") {
	case "photo":
		if photo := stringValue(values, "url"); photo != "" {
			data.Type = embed.SingleImage
			data.Medias = append(data.Medias, embed.Media{
				Type:              embed.ImageMedia,
				Thumbnail:         &embed.ImageInfo{URL: photo},
				RawURL:            photo,
				Location:          photo,
				RestrictionPolicy: embed.RestrictionUnknown,
			})
		}
	case "video":
		data.Type = embed.SingleVideo
		if thumb := stringValue(values, "thumbnail_url"); thumb != "" {
			data.Medias = append(data.Medias, embed.Media{
				Type:              embed.VideoMedia,
				Thumbnail:         &embed.ImageInfo{URL: thumb},
				RawURL:            m.url,
				Location:          m.url,
				RestrictionPolicy: embed.RestrictionUnknown,
			})
		}
	case "rich":
		data.Type = embed.Rich
	}

	return data
}

// parseFlatXML reads the children of the document element into a flat
// name-to-text map, the shape oEmbed XML responses use.
func parseFlatXML(body []byte) (map[string]any, error) {
	values := make(map[string]any)
	dec := xml.NewDecoder(strings.NewReader(string(body)))

	depth := 0
	var field string
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth == 2 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 && field != "" {
				values[field] = text.String()
				field = ""
			}
			depth--
		}
	}
}

func stringValue(values map[string]any, key string) string {
	v, ok := values[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return ""
	}
}

func intValue(values map[string]any, key string) int {
	v, ok := values[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}
