package providers

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"

	"github.com/linkembed/backend/internal/embed"
)

var tweetURLRegexp = regexp.MustCompile(`^https?://(?:mobile\.)?twitter\.com/([^/]+)/status(?:es)?/(\d+)`)

// TwitterProvider recognizes tweet permalinks and owns the authenticated read
// API client.
type TwitterProvider struct {
	client *twitter.Client
}

// NewTwitterProvider builds a provider from OAuth1 application credentials.
func NewTwitterProvider(consumerKey, consumerSecret, accessToken, accessSecret string) *TwitterProvider {
	config := oauth1.NewConfig(consumerKey, consumerSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	return &TwitterProvider{client: twitter.NewClient(httpClient)}
}

func (p *TwitterProvider) CanHandle(u *url.URL) bool {
	return tweetURLRegexp.MatchString(u.String())
}

// NewMetadata parses the screen name and tweet id out of the URL. A URL that
// slipped past the matcher without a parseable id yields a resolver that
// fails fast on fetch instead of issuing a request.
func (p *TwitterProvider) NewMetadata(u *url.URL) embed.Metadata {
	m := &TwitterMetadata{url: u, client: p.client}
	if groups := tweetURLRegexp.FindStringSubmatch(u.String()); groups != nil {
		m.screenName = groups[1]
		m.tweetID, _ = strconv.ParseInt(groups[2], 10, 64)
	}
	return m
}

// TwitterMetadata resolves one tweet and its author through the Twitter read
// API.
type TwitterMetadata struct {
	url        *url.URL
	screenName string
	tweetID    int64
	client     *twitter.Client
	once       embed.Once
}

func (m *TwitterMetadata) Fetch(ctx context.Context, req *embed.RequestContext) (*embed.EmbedData, error) {
	return m.once.Do(func() (*embed.EmbedData, error) {
		return m.fetch(ctx, req)
	})
}

func (m *TwitterMetadata) fetch(ctx context.Context, _ *embed.RequestContext) (*embed.EmbedData, error) {
	if m.tweetID == 0 {
		return nil, fmt.Errorf("parse tweet url %q: %w", m.url, embed.ErrMalformedInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tweet, _, err := m.client.Statuses.Show(m.tweetID, &twitter.StatusShowParams{
		TweetMode:       "extended",
		IncludeEntities: twitter.Bool(true),
	})
	if err != nil {
		return nil, embed.UpstreamError("twitter status", err)
	}

	user, _, err := m.client.Users.Show(&twitter.UserShowParams{ScreenName: m.screenName})
	if err != nil {
		return nil, embed.UpstreamError("twitter user", err)
	}

	// The API reports the canonical casing of the handle; the requested URL
	// may not have had it.
	screenName := user.ScreenName
	if screenName == "" {
		screenName = m.screenName
	}

	data := embed.NewEmbedData(fmt.Sprintf("https://twitter.com/%s/status/%d", screenName, m.tweetID))

	author := fmt.Sprintf("%s(@%s)", user.Name, screenName)
	data.Title = author
	data.AuthorName = author
	data.AuthorURL = fmt.Sprintf("https://twitter.com/%s/", screenName)
	data.Description = tweetText(tweet)
	data.ProviderName = "Twitter"
	data.ProviderURL = "https://twitter.com/"

	policy := embed.RestrictionNone
	if tweet.PossiblySensitive {
		policy = embed.Restricted
	}
	data.RestrictionPolicy = policy

	if tweet.ExtendedEntities != nil {
		for _, entity := range tweet.ExtendedEntities.Media {
			data.Medias = append(data.Medias, tweetMedia(&entity, policy))
		}
	}

	switch len(data.Medias) {
	case 0:
		data.Type = embed.Rich
		data.MetadataImage = &embed.Media{
			Type:              embed.ImageMedia,
			Thumbnail:         &embed.ImageInfo{URL: user.ProfileImageURLHttps},
			RawURL:            user.ProfileImageURLHttps,
			Location:          data.AuthorURL,
			RestrictionPolicy: policy,
		}
	case 1:
		data.Type = embed.SingleImage
		if data.Medias[0].Type == embed.VideoMedia {
			data.Type = embed.SingleVideo
		}
		data.MetadataImage = &data.Medias[0]
	default:
		data.Type = embed.MixedContent
		data.MetadataImage = &data.Medias[0]
	}

	return data, nil
}

// tweetMedia classifies one attached entity: photos stay images, animated
// gifs and native video become video media.
func tweetMedia(entity *twitter.MediaEntity, policy embed.RestrictionPolicy) embed.Media {
	typ := embed.VideoMedia
	if entity.Type == "photo" {
		typ = embed.ImageMedia
	}
	return embed.Media{
		Type:              typ,
		Thumbnail:         &embed.ImageInfo{URL: entity.MediaURLHttps},
		RawURL:            entity.MediaURLHttps,
		Location:          entity.ExpandedURL,
		RestrictionPolicy: policy,
	}
}

func tweetText(tweet *twitter.Tweet) string {
	if tweet.FullText != "" {
		return tweet.FullText
	}
	return tweet.Text
}
