package dims

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObserveIsElementwiseMax(t *testing.T) {
	sizes := [][2]int{{640, 480}, {320, 720}, {1920, 200}, {10, 10}}

	tr := New()
	var wg sync.WaitGroup
	for _, s := range sizes {
		wg.Add(1)
		go func(w, h int) {
			defer wg.Done()
			tr.Observe(w, h)
		}(s[0], s[1])
	}
	wg.Wait()

	w, h := tr.Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 720, h)
	assert.Equal(t, len(sizes), tr.Frames())
}

func TestObserveOrderIndependent(t *testing.T) {
	a, b := New(), New()
	a.Observe(100, 5)
	a.Observe(3, 300)
	b.Observe(3, 300)
	b.Observe(100, 5)

	aw, ah := a.Size()
	bw, bh := b.Size()
	assert.Equal(t, aw, bw)
	assert.Equal(t, ah, bh)
}

func TestUpdateDoesNotCount(t *testing.T) {
	tr := New()
	tr.Update(50, 60)
	tr.Update(40, 70)

	w, h := tr.Size()
	assert.Equal(t, 50, w)
	assert.Equal(t, 70, h)
	assert.Zero(t, tr.Frames())
}

func TestObserveReturnsRunningCount(t *testing.T) {
	tr := New()
	assert.Equal(t, 1, tr.Observe(1, 1))
	assert.Equal(t, 2, tr.Observe(1, 1))
	tr.Update(2, 2)
	assert.Equal(t, 3, tr.Observe(1, 1))
}
