package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ocr-gateway/internal/models"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("hello"))
	b := Fingerprint([]byte("hello"))
	c := Fingerprint([]byte("hello!"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(nil))
}

func sampleResponse(text string) models.OCRResponse {
	return models.OCRResponse{
		Success:    true,
		Text:       text,
		Confidence: 0.9,
		Metadata:   models.ImageMetadata{Width: 10, Height: 5, Format: "PNG"},
	}
}

func TestMemory_Policies(t *testing.T) {
	for _, policy := range []string{PolicyLRU, Policy2Q, PolicyTTL} {
		t.Run(policy, func(t *testing.T) {
			m, err := NewMemory(4, policy, time.Hour)
			require.NoError(t, err)

			_, ok := m.Lookup("missing")
			assert.False(t, ok)

			m.Store("fp", sampleResponse("hello"))
			got, ok := m.Lookup("fp")
			require.True(t, ok)
			assert.Equal(t, "hello", got.Text)
			assert.Equal(t, 1, m.Len())

			stats := m.Stats()
			assert.Equal(t, int64(1), stats.Hits)
			assert.Equal(t, int64(1), stats.Misses)
			assert.Equal(t, 4, stats.Capacity)
			assert.Equal(t, policy, stats.Policy)
		})
	}
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	m, err := NewMemory(2, PolicyLRU, 0)
	require.NoError(t, err)

	m.Store("a", sampleResponse("a"))
	m.Store("b", sampleResponse("b"))
	_, _ = m.Lookup("a") // a is now most recent
	m.Store("c", sampleResponse("c"))

	assert.Equal(t, 2, m.Len())
	_, ok := m.Lookup("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = m.Lookup("a")
	assert.True(t, ok)
	_, ok = m.Lookup("c")
	assert.True(t, ok)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m, err := NewMemory(1, PolicyLRU, 0)
	require.NoError(t, err)

	m.Store("fp", sampleResponse("original"))
	got, _ := m.Lookup("fp")
	got.Text = "mutated"
	got.Cached = true

	again, _ := m.Lookup("fp")
	assert.Equal(t, "original", again.Text)
	assert.False(t, again.Cached)
}

func TestMemory_TTLExpires(t *testing.T) {
	m, err := NewMemory(4, PolicyTTL, 20*time.Millisecond)
	require.NoError(t, err)

	m.Store("fp", sampleResponse("soon gone"))
	assert.Eventually(t, func() bool {
		_, ok := m.Lookup("fp")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewMemory_Invalid(t *testing.T) {
	_, err := NewMemory(0, PolicyLRU, 0)
	assert.Error(t, err)

	_, err = NewMemory(1, "fifo", 0)
	assert.Error(t, err)

	_, err = NewMemory(1, PolicyTTL, 0)
	assert.Error(t, err)
}

func TestMemory_Concurrent(t *testing.T) {
	m, err := NewMemory(64, PolicyLRU, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i*100+j)%80)
				m.Store(key, sampleResponse(key))
				if got, ok := m.Lookup(key); ok {
					assert.Equal(t, key, got.Text)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Len(), 64)
}

func TestDisabled(t *testing.T) {
	c, err := New(false, 0, "", 0)
	require.NoError(t, err)

	c.Store("fp", sampleResponse("x"))
	_, ok := c.Lookup("fp")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "disabled", c.Stats().Policy)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestMemory_PeekDoesNotCount(t *testing.T) {
	m, err := NewMemory(2, Policy2Q, 0)
	require.NoError(t, err)

	_, ok := m.Peek("fp")
	assert.False(t, ok)
	m.Store("fp", sampleResponse("x"))
	_, ok = m.Peek("fp")
	assert.True(t, ok)

	stats := m.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
}
