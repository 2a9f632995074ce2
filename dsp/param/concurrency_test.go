package param

import (
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Controller goroutines hammer a shared cell and trigger while a single
// consumer loop plays the audio thread. The loop must observe valid
// values throughout, and every successful Consume must be backed by a
// Fire.
func TestCellAndTriggerUnderControllerLoad(t *testing.T) {
	cell := NewCell(0)
	tr := NewTrigger()
	p := NewLinked(cell)

	var stop atomic.Bool
	var fires atomic.Int64
	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(seed float32) {
			defer wg.Done()
			v := seed
			for !stop.Load() {
				cell.Store(v)
				v += 0.001
				tr.Fire()
				fires.Add(1)
			}
		}(float32(g))
	}

	consumed := int64(0)
	for i := 0; i < 200000; i++ {
		_ = p.ReadAt(uint64(i))
		if tr.Consume() {
			consumed++
		}
	}

	stop.Store(true)
	wg.Wait()

	if consumed > fires.Load() {
		t.Fatalf("consumed %d triggers but only %d fired", consumed, fires.Load())
	}

	cell.Store(0.5)
	if got := p.ReadAt(0); got != 0.5 {
		t.Fatalf("read after quiescence = %v, want 0.5", got)
	}
}
