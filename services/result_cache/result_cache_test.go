package result_cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

func newTestCache(capacity int, ttl time.Duration) (*Cache, *mockClock) {
	clock := &mockClock{now: time.Now()}
	c := New(capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestGetSetRoundTrip(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []float32{0.1, 0.2})
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, v)
}

func TestExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("k", "v")
	clock.Advance(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must be reported absent")

	// The entry still occupies the map until overwritten.
	assert.Equal(t, 1, c.Len())

	c.Set("k", "v2")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, c.Len())
}

func TestGetDoesNotResetTTL(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("k", "v")
	clock.Advance(40 * time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	// The read above must not have extended the entry's life.
	clock.Advance(30 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCapacityEviction(t *testing.T) {
	capacity := 5
	c, _ := newTestCache(capacity, time.Minute)

	for i := 0; i <= capacity; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, capacity, c.Len())
	_, ok := c.Get("k0")
	assert.False(t, ok, "oldest entry should have been evicted")
	for i := 1; i <= capacity; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
}

func TestRecencyAffectsEviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so that "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(50, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%70)
			c.Set(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestVectorFingerprintRounding(t *testing.T) {
	a := VectorFingerprint([]float32{0.123456, 0.999999})
	b := VectorFingerprint([]float32{0.1234561, 0.9999992})
	assert.Equal(t, a, b, "sub-1e-5 noise must not change the fingerprint")

	d := VectorFingerprint([]float32{0.12347, 0.999999})
	assert.NotEqual(t, a, d)
}

func TestTextFingerprintTruncation(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	longer := append([]byte{}, long...)
	longer = append(longer, 'b')

	assert.NotEqual(t, TextFingerprint(string(long)), TextFingerprint(string(longer)))
	assert.Equal(t, TextFingerprint("  hello "), TextFingerprint("hello"))
}
