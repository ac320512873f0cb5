package wpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoURLsAreDeterministic(t *testing.T) {
	r := NewPhotoResolver("https://cdn.example.com/wpl", "jpg")

	first := r.URLs(42, 3)
	second := r.URLs(42, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"https://cdn.example.com/wpl/42/1.jpg",
		"https://cdn.example.com/wpl/42/2.jpg",
		"https://cdn.example.com/wpl/42/3.jpg",
	}, first)
}

func TestPhotoURLsZeroCount(t *testing.T) {
	r := NewPhotoResolver("https://cdn.example.com/wpl", "jpg")

	assert.Nil(t, r.URLs(42, 0))
	assert.Nil(t, r.URLs(42, -1))
	assert.Empty(t, r.Thumbnail(nil))
}

func TestPhotoResolverNormalizesInputs(t *testing.T) {
	r := NewPhotoResolver("https://cdn.example.com/wpl/", ".webp")

	urls := r.URLs(7, 1)
	assert.Equal(t, []string{"https://cdn.example.com/wpl/7/1.webp"}, urls)
	assert.Equal(t, urls[0], r.Thumbnail(urls))
}
