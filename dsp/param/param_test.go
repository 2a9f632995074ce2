package param

import (
	"strings"
	"testing"

	"github.com/Na1w/infinitedsp/dsp/core"
)

// counter writes 1, 2, 3, ... across reads, one increment per sample.
type counter struct {
	calls  int
	resets int
	rate   float64
}

func (c *counter) Process(buf []float32, _ uint64) {
	for i := range buf {
		c.calls++
		buf[i] = float32(c.calls)
	}
}
func (c *counter) Reset()                  { c.calls = 0; c.resets++ }
func (c *counter) SetSampleRate(r float64) { c.rate = r }
func (c *counter) Latency() int            { return 0 }
func (c *counter) Layout() core.Mono       { return core.Mono{} }

func TestConstantReportsConstant(t *testing.T) {
	p := NewConstant(0.25)

	for _, at := range []uint64{0, 1, 44100, 1 << 40} {
		if got := p.ReadAt(at); got != 0.25 {
			t.Fatalf("ReadAt(%d) = %v, want 0.25", at, got)
		}
		v, ok := p.Constant()
		if !ok || v != 0.25 {
			t.Fatalf("Constant() = %v, %v, want 0.25, true", v, ok)
		}
	}
}

func TestLinkedFollowsCellAndNeverReportsConstant(t *testing.T) {
	cell := NewCell(0.5)
	p := NewLinked(cell)

	if got := p.ReadAt(0); got != 0.5 {
		t.Fatalf("ReadAt = %v, want 0.5", got)
	}

	cell.Store(0.75)
	if got := p.ReadAt(1); got != 0.75 {
		t.Fatalf("ReadAt after store = %v, want 0.75", got)
	}

	if _, ok := p.Constant(); ok {
		t.Fatalf("linked parameter claimed constancy")
	}
}

func TestModulatedAdvancesOncePerRead(t *testing.T) {
	p := NewModulated(&counter{})

	for i := 1; i <= 3; i++ {
		if got := p.ReadAt(uint64(i)); got != float32(i) {
			t.Fatalf("read %d = %v, want %v", i, got, float32(i))
		}
	}

	if _, ok := p.Constant(); ok {
		t.Fatalf("modulated parameter claimed constancy")
	}
}

func TestFillMatchesSequentialReads(t *testing.T) {
	block := NewModulated(&counter{})
	serial := NewModulated(&counter{})

	got := make([]float32, 8)
	block.Fill(got, 0)

	for i := range got {
		want := serial.ReadAt(uint64(i))
		if got[i] != want {
			t.Fatalf("index %d: Fill %v, ReadAt %v", i, got[i], want)
		}
	}
}

func TestFillLinkedReadsOncePerBlock(t *testing.T) {
	cell := NewCell(1)
	p := NewLinked(cell)

	dst := make([]float32, 4)
	p.Fill(dst, 0)
	for i, v := range dst {
		if v != 1 {
			t.Fatalf("dst[%d] = %v, want 1", i, v)
		}
	}
}

func TestResetAndSampleRateForwardToSource(t *testing.T) {
	src := &counter{}
	p := NewModulated(src)

	p.ReadAt(0)
	p.Reset()
	if src.resets != 1 || src.calls != 0 {
		t.Fatalf("reset not forwarded: resets=%d calls=%d", src.resets, src.calls)
	}

	p.SetSampleRate(48000)
	if src.rate != 48000 {
		t.Fatalf("sample rate not forwarded: %v", src.rate)
	}

	// Constant params ignore both without panicking.
	c := NewConstant(1)
	c.Reset()
	c.SetSampleRate(48000)
}

func TestZeroValueIsConstantZero(t *testing.T) {
	var p Param

	if got := p.ReadAt(0); got != 0 {
		t.Fatalf("zero value ReadAt = %v, want 0", got)
	}
	if v, ok := p.Constant(); !ok || v != 0 {
		t.Fatalf("zero value Constant() = %v, %v, want 0, true", v, ok)
	}
}

func TestNilSourcesDegradeToConstantZero(t *testing.T) {
	linked := NewLinked(nil)
	if _, ok := linked.Constant(); !ok {
		t.Fatalf("NewLinked(nil) should be constant")
	}
	modulated := NewModulated(nil)
	if _, ok := modulated.Constant(); !ok {
		t.Fatalf("NewModulated(nil) should be constant")
	}
}

func TestTriggerConsumesAtMostOnce(t *testing.T) {
	tr := NewTrigger()

	if tr.Consume() {
		t.Fatalf("unarmed trigger consumed")
	}

	tr.Fire()
	tr.Fire() // arming twice still yields one consumption

	if !tr.Consume() {
		t.Fatalf("armed trigger not consumed")
	}
	if tr.Consume() {
		t.Fatalf("trigger consumed twice for one arm")
	}
}

func TestDescribeVariants(t *testing.T) {
	c := NewConstant(2)
	if n := c.Describe(); n.Name != "Constant" || !strings.Contains(n.Detail, "2") {
		t.Fatalf("constant description = %+v", n)
	}

	l := NewLinked(NewCell(0))
	if n := l.Describe(); n.Name != "Linked" {
		t.Fatalf("linked description = %+v", n)
	}

	m := NewModulated(&counter{})
	n := m.Describe()
	if n.Name != "Modulated" || len(n.Children) != 1 {
		t.Fatalf("modulated description = %+v", n)
	}
}
