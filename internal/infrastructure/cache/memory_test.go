package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dealscope/backend/internal/domain"
)

func testResult(query string) *domain.SearchResult {
	return &domain.SearchResult{
		Query:        query,
		Results:      []domain.RankedListing{},
		TotalResults: 0,
		Source:       "live",
	}
}

func TestResultCache_SetAndGet(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	result := testResult("iphone 15 pro")
	if err := cache.Set(ctx, "search:iphone 15 pro:", result, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "search:iphone 15 pro:")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Query != "iphone 15 pro" {
		t.Errorf("Query = %s, want iphone 15 pro", got.Query)
	}
}

func TestResultCache_Get_CacheMiss(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestResultCache_ExpiredEntryIsMiss(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "short-ttl", testResult("q"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err := cache.Get(ctx, "short-ttl")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiry error = %v, want %v", err, domain.ErrCacheMiss)
	}

	// Lazy eviction removed the entry
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after lazy eviction", size)
	}
}

func TestResultCache_Delete(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, testResult("q"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestResultCache_SizeAndClear(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := cache.Set(ctx, key, testResult(key), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestResultCache_LastWriterWins(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	key := "race-key"
	if err := cache.Set(ctx, key, testResult("first"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Set(ctx, key, testResult("second"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Query != "second" {
		t.Errorf("Query = %s, want second", got.Query)
	}
}

func TestResultCache_Concurrent(t *testing.T) {
	cache := NewResultCache()
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, testResult(key), time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
