package embed

// DataType describes how a consumer should render a resolved resource.
type DataType string

const (
	SingleImage  DataType = "single_image"
	SingleVideo  DataType = "single_video"
	MixedContent DataType = "mixed_content"
	Rich         DataType = "rich"
	Link         DataType = "link"
)

// MediaType identifies the kind of a single media item.
type MediaType string

const (
	ImageMedia MediaType = "image"
	VideoMedia MediaType = "video"
)

// RestrictionPolicy classifies content-sensitivity signals reported by a
// source, per item or for the whole result.
type RestrictionPolicy string

const (
	RestrictionUnknown RestrictionPolicy = "unknown"
	RestrictionNone    RestrictionPolicy = "none"
	Restricted         RestrictionPolicy = "restricted"
)

// ImageInfo locates one thumbnail rendition. Width and Height are zero when
// the source did not report dimensions.
type ImageInfo struct {
	URL    string
	Width  int
	Height int
}

// Media is one piece of visual content attached to an embed. Location is the
// permalink of this specific item and may differ from the parent URL, for
// example one image inside an album.
type Media struct {
	Type              MediaType
	Thumbnail         *ImageInfo
	RawURL            string
	Location          string
	RestrictionPolicy RestrictionPolicy
}

// EmbedData is the normalized result of resolving one URL. Every resolver
// produces this shape regardless of the source it talked to.
type EmbedData struct {
	URL               string
	Title             string
	Description       string
	AuthorName        string
	AuthorURL         string
	ProviderName      string
	ProviderURL       string
	Type              DataType
	RestrictionPolicy RestrictionPolicy

	// CacheAge is the advisory number of seconds a caller may cache the
	// result for; zero means no advice.
	CacheAge int

	// MetadataImage is the single representative media item, such as an album
	// cover. It may or may not also appear in Medias.
	MetadataImage *Media

	// Medias holds attached media in rendering order. It is always non-nil.
	Medias []Media
}

// NewEmbedData returns an EmbedData for the given canonical URL with the
// invariant defaults applied: an empty (never nil) media list, Link type and
// an unknown restriction policy.
func NewEmbedData(url string) *EmbedData {
	return &EmbedData{
		URL:               url,
		Type:              Link,
		RestrictionPolicy: RestrictionUnknown,
		Medias:            []Media{},
	}
}
