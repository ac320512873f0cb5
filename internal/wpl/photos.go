package wpl

import (
	"fmt"
	"strings"
)

// PhotoResolver reconstructs the photo URLs of a listing from its source
// id and declared photo count. The legacy system stored media under a
// fixed per-listing path, so existence is asserted by naming convention
// alone; nothing is fetched or verified here.
type PhotoResolver struct {
	baseURL string
	ext     string
}

// NewPhotoResolver returns a resolver producing
// {baseURL}/{sourceID}/{index}.{ext} with a 1-based index.
func NewPhotoResolver(baseURL, ext string) *PhotoResolver {
	return &PhotoResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		ext:     strings.TrimLeft(ext, "."),
	}
}

// URLs returns exactly count URLs in index order. The same
// (sourceID, count) pair always yields the same list.
func (r *PhotoResolver) URLs(sourceID int64, count int) []string {
	if count <= 0 {
		return nil
	}
	urls := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		urls = append(urls, fmt.Sprintf("%s/%d/%d.%s", r.baseURL, sourceID, i, r.ext))
	}
	return urls
}

// Thumbnail is the first photo URL, or empty when there are no photos.
func (r *PhotoResolver) Thumbnail(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
