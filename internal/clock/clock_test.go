package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_SetAndAdvance(t *testing.T) {
	start := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	c := NewFixed(start)
	assert.Equal(t, start, c.Now())

	got := c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), got)
	assert.Equal(t, got, c.Now())

	earlier := start.Add(-24 * time.Hour)
	c.Set(earlier)
	assert.Equal(t, earlier, c.Now())
}

func TestFixed_ThreadSafe(t *testing.T) {
	c := NewFixed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			c.Advance(time.Minute)
			_ = c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, time.Date(2024, 1, 1, 0, goroutines, 0, 0, time.UTC), c.Now())
}

func TestOffset(t *testing.T) {
	base := NewFixed(time.Date(2024, 9, 1, 23, 30, 0, 0, time.UTC))
	o := Offset{Base: base, Shift: 2 * time.Hour}

	assert.Equal(t, time.Date(2024, 9, 2, 1, 30, 0, 0, time.UTC), o.Now())

	base.Advance(time.Hour)
	assert.Equal(t, time.Date(2024, 9, 2, 2, 30, 0, 0, time.UTC), o.Now())
}

func TestSystem_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	s := NewSystem(loc)
	assert.Equal(t, loc, s.Now().Location())

	assert.Equal(t, time.Local, NewSystem(nil).Now().Location())
}
