package spectral

// fifo is a growable ring of samples. Pushing past the capacity
// reallocates; steady-state streaming never does.
type fifo struct {
	buf  []float32
	head int
	size int
}

func newFIFO(capacity int) fifo {
	return fifo{buf: make([]float32, capacity)}
}

func (f *fifo) len() int {
	return f.size
}

func (f *fifo) push(v float32) {
	if f.size == len(f.buf) {
		f.grow()
	}

	f.buf[(f.head+f.size)%len(f.buf)] = v
	f.size++
}

func (f *fifo) pushZeros(n int) {
	for i := 0; i < n; i++ {
		f.push(0)
	}
}

// pop removes and returns the oldest sample, or 0 when empty.
func (f *fifo) pop() float32 {
	if f.size == 0 {
		return 0
	}

	v := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.size--

	return v
}

// at returns the i-th oldest sample without removing it.
func (f *fifo) at(i int) float32 {
	return f.buf[(f.head+i)%len(f.buf)]
}

func (f *fifo) drop(n int) {
	if n > f.size {
		n = f.size
	}

	f.head = (f.head + n) % len(f.buf)
	f.size -= n
}

func (f *fifo) reset() {
	f.head = 0
	f.size = 0
}

func (f *fifo) grow() {
	next := make([]float32, 2*len(f.buf))
	for i := 0; i < f.size; i++ {
		next[i] = f.at(i)
	}

	f.buf = next
	f.head = 0
}
