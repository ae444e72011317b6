package providers

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/linkembed/backend/internal/embed"
)

var pixivArtworkRegexp = regexp.MustCompile(`^/(?:en/)?artworks/(\d+)$`)

// PixivProvider matches pixiv illust pages. Resolution piggybacks on the
// generic page scrape with pixiv-specific post-processing: the site tags a
// sensitive illust with a blurred placeholder image instead of the artwork.
type PixivProvider struct{}

func (PixivProvider) CanHandle(u *url.URL) bool {
	return pixivIllustID(u) != 0
}

func (PixivProvider) NewMetadata(u *url.URL) embed.Metadata {
	m := NewHTMLMetadata(u)
	m.post = pixivPostExtract(pixivIllustID(u), u.String())
	return m
}

// pixivIllustID extracts the illust id from either the /artworks/{id} path or
// the legacy member_illust.php?illust_id= form. Zero means no match.
func pixivIllustID(u *url.URL) int64 {
	host := strings.ToLower(u.Hostname())
	if host != "pixiv.net" && host != "www.pixiv.net" {
		return 0
	}
	if m := pixivArtworkRegexp.FindStringSubmatch(u.Path); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		return id
	}
	if strings.HasSuffix(u.Path, "member_illust.php") {
		id, _ := strconv.ParseInt(u.Query().Get("illust_id"), 10, 64)
		return id
	}
	return 0
}

func pixivPostExtract(illustID int64, pageURL string) postExtract {
	return func(doc *goquery.Document, data *embed.EmbedData) {
		data.Title = strings.TrimSpace(strings.ReplaceAll(data.Title, "[pixiv]", ""))

		restriction := embed.RestrictionUnknown
		censored, _ := doc.Find("div.sensored img").First().Attr("src")
		if censored != "" {
			restriction = embed.Restricted
			illustURL := strings.Replace(censored, "64x64", "128x128", 1)
			data.MetadataImage = &embed.Media{
				Type:              embed.ImageMedia,
				Thumbnail:         &embed.ImageInfo{URL: illustURL, Width: 128, Height: 128},
				RawURL:            illustURL,
				Location:          pageURL,
				RestrictionPolicy: restriction,
			}
		} else {
			illustURL := fmt.Sprintf("http://embed.pixiv.net/decorate.php?illust_id=%d", illustID)
			data.MetadataImage = &embed.Media{
				Type:              embed.ImageMedia,
				Thumbnail:         &embed.ImageInfo{URL: illustURL, Width: 600},
				RawURL:            illustURL,
				Location:          pageURL,
				RestrictionPolicy: restriction,
			}
		}

		// MetadataImage above replaces whatever the generic scrape found.
		data.Medias = []embed.Media{}
		data.RestrictionPolicy = restriction
	}
}
