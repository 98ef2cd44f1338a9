package crawler

import (
	"context"
	"net/url"

	"playlist-crawler/pkg/models"
)

const (
	// ItemSelector matches one rendered playlist entry.
	ItemSelector = "#contents ytd-playlist-video-renderer"

	titleSelector = "#video-title"
	infoSelector  = "#video-info span"
	imageSelector = "img"

	// FallbackThumbnail stands in for entries whose image never got a src.
	FallbackThumbnail = "https://imgs.search.brave.com/4g4GFqi0GfyV1NY16cG5XsEvUnzhjUv2Qd7w0OPOlwU/rs:fit:500:0:0/g:ce/aHR0cHM6Ly9jZG40/Lmljb25maW5kZXIu/Y29tL2RhdGEvaWNv/bnMvdWktYmVhc3Qt/NC8zMi9VaS0xMi01/MTIucG5n"
)

// waitForImagesScript settles once every image has either loaded or failed.
const waitForImagesScript = `Promise.all(Array.from(document.querySelectorAll("img"), img =>
	img.complete ? true : new Promise(resolve => { img.onload = img.onerror = () => resolve(true); })
)).then(() => true)`

type Extractor struct {
	// BaseURL resolves relative image sources.
	BaseURL string
}

func NewExtractor(baseURL string) *Extractor {
	return &Extractor{BaseURL: baseURL}
}

// Extract builds one record per node, in the order given. Missing pieces fall
// back to defaults; a single bad node never stops the rest.
func (e *Extractor) Extract(nodes []ItemNode) []models.VideoRecord {
	videos := make([]models.VideoRecord, 0, len(nodes))
	for _, node := range nodes {
		videos = append(videos, e.extractOne(node))
	}
	return videos
}

func (e *Extractor) extractOne(node ItemNode) models.VideoRecord {
	video := models.VideoRecord{Thumbnail: FallbackThumbnail}
	if node == nil {
		return video
	}

	if title, ok := node.Text(titleSelector); ok {
		video.Title = title
	}
	if info, ok := node.Text(infoSelector); ok {
		video.Views = NormalizeViews(info)
	}
	if src, ok := node.Attr(imageSelector, "src"); ok && src != "" {
		if abs := resolveURL(e.BaseURL, src); abs != "" {
			video.Thumbnail = abs
		}
	}
	return video
}

// WaitForImages blocks until the page's images have finished loading, so that
// lazily assigned src attributes are present. Only ctx bounds the wait.
func WaitForImages(ctx context.Context, page Page) error {
	return page.Evaluate(ctx, waitForImagesScript, nil)
}

// Utility to resolve relative URLs (e.g. "/vi/x.jpg" -> "https://site.com/vi/x.jpg")
func resolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == "" {
		return u.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(u).String()
}
