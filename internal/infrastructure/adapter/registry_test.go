package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_GetAndAll(t *testing.T) {
	amazon := NewClient(Config{ID: "amazon", BaseURL: "https://amazon.example.com"})
	ebay := NewClient(Config{ID: "ebay", BaseURL: "https://ebay.example.com"})
	walmart := NewClient(Config{ID: "walmart", BaseURL: "https://walmart.example.com"})

	r := NewRegistry(amazon, ebay, walmart)

	got, ok := r.Get("ebay")
	assert.True(t, ok)
	assert.Equal(t, "ebay", got.ID())

	_, ok = r.Get("aliexpress")
	assert.False(t, ok)

	assert.Equal(t, []string{"amazon", "ebay", "walmart"}, r.IDs())

	all := r.All()
	assert.Len(t, all, 3)
	for i, id := range r.IDs() {
		assert.Equal(t, id, all[i].ID())
	}
}

func TestRegistry_ReplaceKeepsOrder(t *testing.T) {
	first := NewClient(Config{ID: "amazon", BaseURL: "https://old.example.com"})
	second := NewClient(Config{ID: "ebay", BaseURL: "https://ebay.example.com"})

	r := NewRegistry(first, second)

	replacement := NewClient(Config{ID: "amazon", BaseURL: "https://new.example.com"})
	r.Register(replacement)

	assert.Equal(t, []string{"amazon", "ebay"}, r.IDs())

	got, ok := r.Get("amazon")
	assert.True(t, ok)
	assert.Same(t, replacement, got)
}
