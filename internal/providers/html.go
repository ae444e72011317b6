// Package providers contains the source-specific resolvers and their URL
// matchers. Each resolver is constructed synchronously from the request URL
// and talks to its remote source at most once.
package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/linkembed/backend/internal/embed"
)

// HTMLProvider is the last-resort matcher: it accepts any web URL and
// resolves it by scraping the page markup.
type HTMLProvider struct{}

func (HTMLProvider) CanHandle(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

func (HTMLProvider) NewMetadata(u *url.URL) embed.Metadata {
	return NewHTMLMetadata(u)
}

// postExtract lets a source-specific resolver rework the scraped result with
// the parsed document still at hand.
type postExtract func(doc *goquery.Document, data *embed.EmbedData)

// HTMLMetadata resolves a page from its title, description and
// representative-image markup.
type HTMLMetadata struct {
	url  *url.URL
	post postExtract
	once embed.Once
}

// NewHTMLMetadata returns a resolver scraping the given page.
func NewHTMLMetadata(u *url.URL) *HTMLMetadata {
	return &HTMLMetadata{url: u}
}

func (m *HTMLMetadata) Fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	return m.once.Do(func() (*embed.EmbedData, error) {
		return m.fetch(ctx, req)
	})
}

func (m *HTMLMetadata) fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url.String(), nil)
	if err != nil {
		return nil, embed.UpstreamError("fetch page", err)
	}

	res, err := req.Service.HTTPClient().Do(httpReq)
	if err != nil {
		return nil, embed.UpstreamError("fetch page", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, embed.UpstreamStatusError("fetch page", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, embed.UpstreamError("parse page", err)
	}

	data := extract(doc, m.url.String())
	if m.post != nil {
		m.post(doc, data)
	}
	return data, nil
}

// extract pulls title, description and a representative image out of the
// document. The result is always SingleImage with one media entry when an
// image was found and an empty media list otherwise.
func extract(doc *goquery.Document, pageURL string) *embed.EmbedData {
	canonical := metaContent(doc, "og:url")
	if canonical == "" {
		canonical = pageURL
	}

	data := embed.NewEmbedData(canonical)
	data.Type = embed.SingleImage

	data.Title = metaContent(doc, "og:title")
	if data.Title == "" {
		data.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	data.Description = metaContent(doc, "og:description")
	if data.Description == "" {
		data.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	}

	if image := metaContent(doc, "og:image"); image != "" {
		media := embed.Media{
			Type:              embed.ImageMedia,
			Thumbnail:         &embed.ImageInfo{URL: image},
			RawURL:            image,
			Location:          canonical,
			RestrictionPolicy: embed.RestrictionUnknown,
		}
		data.MetadataImage = &media
		data.Medias = append(data.Medias, media)
	}

	return data
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
