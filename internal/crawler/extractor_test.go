package crawler

import (
	"fmt"
	"testing"
)

const itemHTML = `
<ytd-playlist-video-renderer>
	<div id="content">
		<a id="thumbnail"><img src="https://i.ytimg.com/vi/%s/hqdefault.jpg"></a>
		<h3><a id="video-title" title="%[2]s">
			%[2]s
		</a></h3>
		<div id="video-info">
			<span>%[3]s</span>
			<span>•</span>
			<span>2 years ago</span>
		</div>
	</div>
</ytd-playlist-video-renderer>`

func TestExtractorExtract(t *testing.T) {
	fragments := []string{
		fmt.Sprintf(itemHTML, "aaa", "Lecture 0 - Scratch", "1.2M views"),
		fmt.Sprintf(itemHTML, "bbb", "Lecture 1 - C", "950 views"),
		fmt.Sprintf(itemHTML, "ccc", "Lecture 2 - Arrays", "2,300 view"),
	}
	nodes, err := ParseItemNodes(fragments)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	videos := NewExtractor("https://www.youtube.com/playlist?list=PL1").Extract(nodes)

	if len(videos) != len(fragments) {
		t.Fatalf("Video count mismatch. Expected %d, got %d", len(fragments), len(videos))
	}

	expected := []struct {
		title string
		views int64
		thumb string
	}{
		{"Lecture 0 - Scratch", 1200000, "https://i.ytimg.com/vi/aaa/hqdefault.jpg"},
		{"Lecture 1 - C", 950, "https://i.ytimg.com/vi/bbb/hqdefault.jpg"},
		{"Lecture 2 - Arrays", 2300, "https://i.ytimg.com/vi/ccc/hqdefault.jpg"},
	}
	for i, want := range expected {
		got := videos[i]
		if got.Title != want.title {
			t.Errorf("Index %d title mismatch.\nExpected: %q\nGot: %q", i, want.title, got.Title)
		}
		if got.Views != want.views {
			t.Errorf("Index %d views mismatch. Expected %d, got %d", i, want.views, got.Views)
		}
		if got.Thumbnail != want.thumb {
			t.Errorf("Index %d thumbnail mismatch.\nExpected: %s\nGot:      %s", i, want.thumb, got.Thumbnail)
		}
	}
}

func TestExtractorMissingSubElements(t *testing.T) {
	fragments := []string{
		`<ytd-playlist-video-renderer><div id="video-info"><span>10 views</span></div></ytd-playlist-video-renderer>`,
		`<ytd-playlist-video-renderer><a id="video-title">Only a title</a></ytd-playlist-video-renderer>`,
		`<ytd-playlist-video-renderer><img><a id="video-title">Empty src</a></ytd-playlist-video-renderer>`,
		`<ytd-playlist-video-renderer></ytd-playlist-video-renderer>`,
	}
	nodes, err := ParseItemNodes(fragments)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	videos := NewExtractor("").Extract(append(nodes, nil))

	if len(videos) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(videos))
	}
	for i, v := range videos {
		if v.Thumbnail != FallbackThumbnail {
			t.Errorf("Index %d: expected fallback thumbnail, got %q", i, v.Thumbnail)
		}
	}
	if videos[0].Title != "" || videos[0].Views != 10 {
		t.Errorf("Index 0: got %+v", videos[0])
	}
	if videos[1].Title != "Only a title" || videos[1].Views != 0 {
		t.Errorf("Index 1: got %+v", videos[1])
	}
	if videos[2].Title != "Empty src" {
		t.Errorf("Index 2: got %+v", videos[2])
	}
}

func TestExtractorResolvesRelativeThumbnail(t *testing.T) {
	nodes, err := ParseItemNodes([]string{`<div><img src="/vi/x/default.jpg"></div>`})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	videos := NewExtractor("https://www.youtube.com/playlist?list=PL1").Extract(nodes)

	want := "https://www.youtube.com/vi/x/default.jpg"
	if videos[0].Thumbnail != want {
		t.Errorf("Expected %s, got %s", want, videos[0].Thumbnail)
	}
}

func TestExtractorPreservesOrder(t *testing.T) {
	const n = 50
	fragments := make([]string, n)
	for i := range fragments {
		fragments[i] = fmt.Sprintf(`<div><a id="video-title">v%d</a><div id="video-info"><span>%d views</span></div></div>`, i, i)
	}
	nodes, err := ParseItemNodes(fragments)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	videos := NewExtractor("").Extract(nodes)

	for i, v := range videos {
		if v.Title != fmt.Sprintf("v%d", i) || v.Views != int64(i) {
			t.Fatalf("Index %d out of order: %+v", i, v)
		}
	}
}
