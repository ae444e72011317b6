package embed

// ResponseWriter serializes a resolution result without binding the data
// model to a concrete encoding. Array values and objects nested in arrays
// take an element name on every call because the XML encoding needs a tag per
// repeated element; the JSON encoding ignores it.
//
// A writer must be closed exactly once; any write after Close fails with
// ErrWriterClosed. Close flushes buffered output.
type ResponseWriter interface {
	WriteStartResponse(name string) error
	WriteProperty(name string, value any) error
	WriteStartArrayProperty(name string) error
	WriteEndArrayProperty() error
	WriteStartObjectProperty(name string) error
	WriteEndObjectProperty() error
	WriteStartObject(name string) error
	WriteEndObject() error
	WriteArrayValue(name string, value any) error
	WriteEndResponse() error
	Close() error
}

// WriteEmbedData walks the data model through the writer. Optional string
// fields are omitted when empty; Medias is always emitted, empty or not.
func WriteEmbedData(d *EmbedData, w ResponseWriter) error {
	dw := &dataWalker{w: w}

	dw.start("embed")
	dw.prop("url", d.URL)
	dw.prop("title", d.Title)
	dw.prop("description", d.Description)
	dw.prop("author_name", d.AuthorName)
	dw.prop("author_url", d.AuthorURL)
	dw.prop("provider_name", d.ProviderName)
	dw.prop("provider_url", d.ProviderURL)
	if d.CacheAge > 0 {
		dw.numProp("cache_age", d.CacheAge)
	}
	dw.prop("type", string(d.Type))
	dw.prop("restriction_policy", string(d.RestrictionPolicy))

	if d.MetadataImage != nil {
		dw.startObjectProp("metadata_image")
		dw.media(d.MetadataImage)
		dw.endObjectProp()
	}

	dw.startArrayProp("medias")
	for i := range d.Medias {
		dw.startObject("media")
		dw.media(&d.Medias[i])
		dw.endObject()
	}
	dw.endArrayProp()

	dw.end()
	return dw.err
}

// dataWalker keeps the serialization walk readable: after the first writer
// error every later call is a no-op and the error is reported once.
type dataWalker struct {
	w   ResponseWriter
	err error
}

func (dw *dataWalker) start(name string) {
	if dw.err == nil {
		dw.err = dw.w.WriteStartResponse(name)
	}
}

func (dw *dataWalker) end() {
	if dw.err == nil {
		dw.err = dw.w.WriteEndResponse()
	}
}

func (dw *dataWalker) prop(name, value string) {
	if dw.err == nil && value != "" {
		dw.err = dw.w.WriteProperty(name, value)
	}
}

func (dw *dataWalker) numProp(name string, value int) {
	if dw.err == nil {
		dw.err = dw.w.WriteProperty(name, value)
	}
}

func (dw *dataWalker) startArrayProp(name string) {
	if dw.err == nil {
		dw.err = dw.w.WriteStartArrayProperty(name)
	}
}

func (dw *dataWalker) endArrayProp() {
	if dw.err == nil {
		dw.err = dw.w.WriteEndArrayProperty()
	}
}

func (dw *dataWalker) startObjectProp(name string) {
	if dw.err == nil {
		dw.err = dw.w.WriteStartObjectProperty(name)
	}
}

func (dw *dataWalker) endObjectProp() {
	if dw.err == nil {
		dw.err = dw.w.WriteEndObjectProperty()
	}
}

func (dw *dataWalker) startObject(name string) {
	if dw.err == nil {
		dw.err = dw.w.WriteStartObject(name)
	}
}

func (dw *dataWalker) endObject() {
	if dw.err == nil {
		dw.err = dw.w.WriteEndObject()
	}
}

func (dw *dataWalker) media(m *Media) {
	dw.prop("type", string(m.Type))
	if m.Thumbnail != nil {
		dw.startObjectProp("thumbnail")
		dw.prop("url", m.Thumbnail.URL)
		if m.Thumbnail.Width > 0 {
			dw.numProp("width", m.Thumbnail.Width)
		}
		if m.Thumbnail.Height > 0 {
			dw.numProp("height", m.Thumbnail.Height)
		}
		dw.endObjectProp()
	}
	dw.prop("raw_url", m.RawURL)
	dw.prop("location", m.Location)
	dw.prop("restriction_policy", string(m.RestrictionPolicy))
}
