package goquery_test

import (
	"testing"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/goquery"
	"github.com/fwojciec/linkmigrator/mock"
	"github.com/fwojciec/linkmigrator/resourcemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = linkmigrator.LinkKey{Type: "wiki_page", MigrationID: "A"}

func newService(t *testing.T) *resourcemap.Service {
	t.Helper()
	data, err := resourcemap.LoadFile("../testdata/canvas_resource_map.json")
	require.NoError(t, err)
	return resourcemap.NewService(data)
}

func convert(t *testing.T, p *goquery.Parser, html string) (string, []*linkmigrator.Reference) {
	t.Helper()
	links := linkmigrator.NewLinkMap()
	out := p.Convert(links, html, testKey, "body", linkmigrator.ConvertOptions{})
	return out, links.Lookup(testKey, "body")
}

func TestParser_AnchorText(t *testing.T) {
	t.Parallel()

	t.Run("replaces anchor text matching the href", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, refs := convert(t, p, `<a href="$WIKI_REFERENCE$/pages/1">$WIKI_REFERENCE$/pages/1</a>`)

		ph := linkmigrator.Placeholder("$WIKI_REFERENCE$/pages/1")
		assert.Equal(t, `<a href="`+ph+`">`+ph+`</a>`, out)
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindObject, refs[0].Kind)
		assert.Equal(t, "pages", refs[0].Type)
		assert.Equal(t, "1", refs[0].MigrationID)
		assert.Equal(t, "$WIKI_REFERENCE$/pages/1", refs[0].OldValue)
		assert.Equal(t, ph, refs[0].Placeholder)
	})

	t.Run("keeps anchor text that differs from the href", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, _ := convert(t, p, `<a href="$WIKI_REFERENCE$/pages/1">$WIKI_REFERENCE$/pages/5</a>`)

		ph := linkmigrator.Placeholder("$WIKI_REFERENCE$/pages/1")
		assert.Equal(t, `<a href="`+ph+`">$WIKI_REFERENCE$/pages/5</a>`, out)
	})
}

func TestParser_ResolvedLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "course reference",
			in:   `<a href="$CANVAS_COURSE_REFERENCE$/discussion_topics">x</a>`,
			want: `<a href="/courses/2/discussion_topics">x</a>`,
		},
		{
			name: "percent-encoded course reference",
			in:   `<a href="%24CANVAS_COURSE_REFERENCE%24/announcements">x</a>`,
			want: `<a href="/courses/2/announcements">x</a>`,
		},
		{
			name: "destination host",
			in:   `<a href="https://apple.edu/courses/1/pages/x">x</a>`,
			want: `<a href="/courses/1/pages/x">x</a>`,
		},
		{
			name: "destination host with port",
			in:   `<a href="http://kiwi.edu:8080/courses/1?y=1">x</a>`,
			want: `<a href="/courses/1?y=1">x</a>`,
		},
		{
			name: "foreign host",
			in:   `<a href="http://other-canvas.example.com/">x</a>`,
			want: `<a href="http://other-canvas.example.com/">x</a>`,
		},
		{
			name: "mailto",
			in:   `<a href="mailto:someone@example.com">x</a>`,
			want: `<a href="mailto:someone@example.com">x</a>`,
		},
		{
			name: "fragment",
			in:   `<a href="#top">x</a>`,
			want: `<a href="#top">x</a>`,
		},
		{
			name: "course file link",
			in:   `<a href="/courses/1/files/2/download">x</a>`,
			want: `<a href="/courses/1/files/2/download">x</a>`,
		},
		{
			name: "equation image",
			in:   `<img class="equation_image" src="/equation_images/x%2By"/>`,
			want: `<img class="equation_image" src="/equation_images/x%2By"/>`,
		},
		{
			name: "unparseable url",
			in:   `<a href="stupid &amp;^%$ url">x</a>`,
			want: `<a href="stupid &amp;^%$ url">x</a>`,
		},
		{
			name: "plain value attribute",
			in:   `<input value="not a link"/>`,
			want: `<input value="not a link"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := goquery.NewParser(newService(t), nil)
			out, refs := convert(t, p, tt.in)

			assert.Equal(t, tt.want, out)
			assert.Empty(t, refs)
		})
	}
}

func TestParser_UnresolvedLinks(t *testing.T) {
	t.Parallel()

	t.Run("relative file path is unescaped", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, refs := convert(t, p, `<img src="subfolder/with%20a%20space/test.png">`)

		ph := linkmigrator.Placeholder("subfolder/with%20a%20space/test.png")
		assert.Equal(t, `<img src="`+ph+`"/>`, out)
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindFile, refs[0].Kind)
		assert.Equal(t, "subfolder/with a space/test.png", refs[0].RelPath)
	})

	t.Run("file base inside object parameter", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, refs := convert(t, p, `<object><param name="src" value="$IMS-CC-FILEBASE$/lolcat.mp3"/></object>`)

		ph := linkmigrator.Placeholder("$IMS-CC-FILEBASE$/lolcat.mp3")
		assert.Equal(t, `<object><param name="src" value="`+ph+`"/></object>`, out)
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindFile, refs[0].Kind)
		assert.Equal(t, "lolcat.mp3", refs[0].RelPath)
	})

	t.Run("module item marker", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		_, refs := convert(t, p, `<a href="$CANVAS_COURSE_REFERENCE$/modules/items/C?foo=bar">x</a>`)

		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindModuleItem, refs[0].Kind)
		assert.Equal(t, "C", refs[0].MigrationID)
		assert.Equal(t, "?foo=bar", refs[0].Query)
	})

	t.Run("wiki page migration id marker", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		_, refs := convert(t, p, `<a href="$CANVAS_COURSE_REFERENCE$/wiki_page_migration_id=A">x</a>`)

		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindWikiPage, refs[0].Kind)
		assert.Equal(t, "A", refs[0].MigrationID)
	})

	t.Run("file reference opened in a new tab", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		_, refs := convert(t, p, `<a target="_blank" href="$CANVAS_COURSE_REFERENCE$/file_ref/E/download?wrap=1">x</a>`)

		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindFileRef, refs[0].Kind)
		assert.Equal(t, "E", refs[0].MigrationID)
		assert.Equal(t, "/download?wrap=1", refs[0].Query)
		assert.True(t, refs[0].TargetBlank)
	})

	t.Run("file reference inside media iframe", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, refs := convert(t, p, `<iframe data-media-type="video" src="$CANVAS_COURSE_REFERENCE$/file_ref/I/download"></iframe>`)

		ph := linkmigrator.Placeholder("$CANVAS_COURSE_REFERENCE$/file_ref/I/download")
		assert.Equal(t, `<iframe data-media-type="video" src="`+ph+`"></iframe>`, out)
		require.Len(t, refs, 1)
		assert.True(t, refs[0].InMediaIframe)
		assert.Equal(t, "video", refs[0].MediaType)
		assert.Equal(t, "?type=video&embedded=true", refs[0].Query)
	})

	t.Run("repeated values share a placeholder", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		_, refs := convert(t, p, `<img src="test.png"><img src="test.png">`)

		require.Len(t, refs, 2)
		assert.Equal(t, refs[0].Placeholder, refs[1].Placeholder)
	})

	t.Run("relative links kept when fixing is disabled", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		svc.KeepRelativeURLs = true
		p := goquery.NewParser(svc, nil)
		out, refs := convert(t, p, `<img src="test.png"/>`)

		assert.Equal(t, `<img src="test.png"/>`, out)
		assert.Empty(t, refs)
	})

	t.Run("unknown object type is reported and kept", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		var warned []string
		svc.OnLinkParseWarning = func(typ string) { warned = append(warned, typ) }
		p := goquery.NewParser(svc, nil)
		out, refs := convert(t, p, `<a href="$CANVAS_OBJECT_REFERENCE$/bananas/1">x</a>`)

		assert.Equal(t, `<a href="$CANVAS_OBJECT_REFERENCE$/bananas/1">x</a>`, out)
		assert.Empty(t, refs)
		assert.Equal(t, []string{"bananas"}, warned)
	})
}

func TestParser_Media(t *testing.T) {
	t.Parallel()

	t.Run("replaces media iframe with placeholder", func(t *testing.T) {
		t.Parallel()

		iframe := `<iframe data-media-type="video" data-media-id="m-yodawg" src="$IMS-CC-FILEBASE$/subfolder/with%20a%20space/yodawg.mov"></iframe>`
		p := goquery.NewParser(newService(t), nil)
		out, refs := convert(t, p, `<p>`+iframe+`</p>`)

		ph := linkmigrator.Placeholder(iframe)
		assert.Equal(t, `<p>`+ph+`</p>`, out)
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindMediaObject, refs[0].Kind)
		assert.Equal(t, "subfolder/with a space/yodawg.mov", refs[0].RelPath)
		assert.Equal(t, iframe, refs[0].OldValue)
	})

	t.Run("folds media source into its video element", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		_, refs := convert(t, p, `<video data-media-id="m-lolcat" data-media-type="audio"><source src="$IMS-CC-FILEBASE$/lolcat.mp3" data-media-id="m-lolcat" data-media-type="audio"></video>`)

		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindMediaObject, refs[0].Kind)
		assert.Equal(t,
			`<iframe data-media-id="m-lolcat" data-media-type="audio" src="$IMS-CC-FILEBASE$/lolcat.mp3"></iframe>`,
			refs[0].OldValue)
	})

	t.Run("hoists media markers from the source element", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, refs := convert(t, p, `<video><source data-media-id="m-1" data-media-type="video" src="http://example.com/v.mp4"></source></video>`)

		iframe := `<iframe data-media-id="m-1" data-media-type="video" src="http://example.com/v.mp4"></iframe>`
		assert.Equal(t, linkmigrator.Placeholder(iframe), out)
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindMediaObject, refs[0].Kind)
		assert.Equal(t, "http://example.com/v.mp4", refs[0].RelPath)
		assert.Equal(t, iframe, refs[0].OldValue)
	})

	t.Run("turns media comment anchor into iframe", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		_, refs := convert(t, p, `<a id="media_comment_0_bq09qam2" class="instructure_inline_media_comment video_comment" href="/media_objects/0_bq09qam2">this is a media comment</a>`)

		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindMediaObject, refs[0].Kind)
		assert.Equal(t, "/media_objects/0_bq09qam2", refs[0].RelPath)
		assert.Equal(t,
			`<iframe id="media_comment_0_bq09qam2" class="instructure_inline_media_comment video_comment" style="width: 320px; height: 240px; display: inline-block;" title="this is a media comment" data-media-type="video" src="/media_objects/0_bq09qam2" allowfullscreen="allowfullscreen" allow="fullscreen" data-media-id="0_bq09qam2"></iframe>`,
			refs[0].OldValue)
	})
}

func TestParser_EmbeddedImages(t *testing.T) {
	t.Parallel()

	t.Run("links decoded image as a file", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		svc.EmbeddedImages = true
		var got *linkmigrator.EmbeddedImage
		images := &mock.EmbeddedImageLinker{
			LinkEmbeddedImageFn: func(img *linkmigrator.EmbeddedImage) (string, bool, error) {
				got = img
				return "embedded_images/hi.png", false, nil
			},
		}
		p := goquery.NewParser(svc, images)
		_, refs := convert(t, p, `<img src="data:image/png;base64,aGk=">`)

		require.NotNil(t, got)
		assert.Equal(t, "image/png", got.MimeType)
		assert.Equal(t, []byte("hi"), got.Data)
		require.Len(t, refs, 1)
		assert.Equal(t, linkmigrator.KindFile, refs[0].Kind)
		assert.Equal(t, "embedded_images/hi.png", refs[0].RelPath)
	})

	t.Run("writes resolved image url", func(t *testing.T) {
		t.Parallel()

		svc := newService(t)
		svc.EmbeddedImages = true
		images := &mock.EmbeddedImageLinker{
			LinkEmbeddedImageFn: func(img *linkmigrator.EmbeddedImage) (string, bool, error) {
				return "/courses/2/files/99/preview", true, nil
			},
		}
		p := goquery.NewParser(svc, images)
		out, refs := convert(t, p, `<img src="data:image/png;base64,aGk=">`)

		assert.Equal(t, `<img src="/courses/2/files/99/preview"/>`, out)
		assert.Empty(t, refs)
	})
}

func TestParser_RemoveOuterNodes(t *testing.T) {
	t.Parallel()

	t.Run("collapses single child wrappers", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		links := linkmigrator.NewLinkMap()
		out := p.Convert(links, `<div><p><a href="#x">y</a></p></div>`, testKey, "body",
			linkmigrator.ConvertOptions{RemoveOuterNodesIfOneChild: true})

		assert.Equal(t, `<a href="#x">y</a>`, out)
	})

	t.Run("keeps wrappers with attributes", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		links := linkmigrator.NewLinkMap()
		out := p.Convert(links, `<div class="x"><p>y</p></div>`, testKey, "body",
			linkmigrator.ConvertOptions{RemoveOuterNodesIfOneChild: true})

		assert.Equal(t, `<div class="x"><p>y</p></div>`, out)
	})

	t.Run("keeps wrappers by default", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser(newService(t), nil)
		out, _ := convert(t, p, `<div><p>y</p></div>`)

		assert.Equal(t, `<div><p>y</p></div>`, out)
	})
}

func TestParser_VoidElements(t *testing.T) {
	t.Parallel()

	p := goquery.NewParser(newService(t), nil)

	out, refs := convert(t, p, `<p>line<br>next<img src="/courses/2/files/5/preview"></p>`)
	assert.Empty(t, refs)
	assert.Equal(t, `<p>line<br/>next<img src="/courses/2/files/5/preview"/></p>`, out)

	again, _ := convert(t, p, out)
	assert.Equal(t, out, again)
}
