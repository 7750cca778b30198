package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRemovesNoise(t *testing.T) {
	html := `<html><body>
		<h1>Guide</h1>
		<div id="bespokePage" class="bespokePage">
			<p>Study in Leeds.</p>
			<div class="table">Fees 9250</div>
			<div class="infoBox">Apply now</div>
			<div class="card-body">Open day</div>
			<section class="territory">UK map</section>
			<ul class="similar-items"><li>Other course</li></ul>
			<script>var tracking = 1;</script>
			<p>Courses start in September.</p>
		</div>
	</body></html>`

	page, err := NewExtractor(ExtractorConfig{}).Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "Guide", page.Title)
	assert.True(t, page.ContentFound)
	assert.Equal(t, "bespoke page", page.Container)
	assert.Equal(t, "Study in Leeds. Courses start in September.", page.Body)
	for _, noise := range []string{"Fees", "Apply", "Open day", "UK map", "Other course", "tracking"} {
		assert.NotContains(t, page.Body, noise)
	}
}

func TestExtractNestedNoise(t *testing.T) {
	html := `<h1>T</h1><div id="bespokePage" class="bespokePage"><div><div><span class="table">hidden <b>deep</b></span></div>kept</div></div>`

	page, err := NewExtractor(ExtractorConfig{}).Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "kept", page.Body)
}

func TestExtractNoContainer(t *testing.T) {
	html := `<html><body><h1>  Only a title  </h1><main>Main text</main></body></html>`

	page, err := NewExtractor(ExtractorConfig{}).Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "Only a title", page.Title)
	assert.False(t, page.ContentFound)
	assert.Empty(t, page.Container)
	assert.Equal(t, DefaultSentinel, page.Body)
}

func TestExtractCustomSentinel(t *testing.T) {
	page, err := NewExtractor(ExtractorConfig{Sentinel: "nothing here"}).Extract(`<p>x</p>`)
	require.NoError(t, err)
	assert.Equal(t, "nothing here", page.Body)
	assert.Empty(t, page.Title)
}

func TestExtractEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantTitle string
		wantBody  string
		wantFound bool
	}{
		{
			name:     "empty document",
			html:     "",
			wantBody: DefaultSentinel,
		},
		{
			name:      "missing heading",
			html:      `<div class="bespokePage">Body only</div>`,
			wantBody:  "Body only",
			wantFound: true,
		},
		{
			name:      "unclosed tags",
			html:      `<h1>Open</h1><div id="bespokePage" class="bespokePage"><p>one<p>two`,
			wantTitle: "Open",
			wantBody:  "onetwo",
			wantFound: true,
		},
		{
			name:      "first heading wins",
			html:      `<h1>First</h1><h1>Second</h1><div id="bespokePage">x</div>`,
			wantTitle: "First",
			wantBody:  "x",
			wantFound: true,
		},
		{
			name:      "whitespace collapsed",
			html:      "<div id=\"bespokePage\">  a \n\n\t b  </div>",
			wantBody:  "a b",
			wantFound: true,
		},
	}

	e := NewExtractor(ExtractorConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := e.Extract(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, page.Title)
			assert.Equal(t, tt.wantBody, page.Body)
			assert.Equal(t, tt.wantFound, page.ContentFound)
		})
	}
}

func TestLocateContainerPriority(t *testing.T) {
	html := `<div class="fallback">second</div><div id="primary">first</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	e := NewExtractor(ExtractorConfig{
		ContainerRules: []ContainerRule{
			{Name: "missing", Selector: "#nope"},
			{Name: "primary", Selector: "#primary"},
			{Name: "fallback", Selector: ".fallback"},
		},
	})

	sel, name := e.locateContainer(doc)
	require.NotNil(t, sel)
	assert.Equal(t, "primary", name)
	assert.Equal(t, "first", sel.Text())
}

func TestContainerRuleMatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p class="a">1</p><p class="a">2</p>`))
	require.NoError(t, err)

	sel := ContainerRule{Selector: ".a"}.Match(doc)
	require.NotNil(t, sel)
	assert.Equal(t, "1", sel.Text())

	assert.Nil(t, ContainerRule{Selector: ".b"}.Match(doc))
}
