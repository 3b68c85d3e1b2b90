package protocol

// InputBuffer is a window of received bytes the transport consumes from
type InputBuffer interface {
	Data() []byte
	Available() int
	Pop(n int)
}

// OutputBuffer collects encoded frames for transmission
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
}

// ScratchOutput is a fixed-size OutputBuffer; writes past the end are
// truncated.
type ScratchOutput struct {
	buf [MessageMax]byte
	pos int
}

func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int { return s.pos }

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos >= 0 && pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos < 0 || pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns the accumulated bytes
func (s *ScratchOutput) Result() []byte { return s.buf[:s.pos] }

func (s *ScratchOutput) Reset() { s.pos = 0 }

// RxBuffer is a linear receive buffer. Consumed bytes are reclaimed by
// sliding the unread tail to the front when space runs out, so Data always
// returns one contiguous slice without allocating.
type RxBuffer struct {
	buf  []byte
	head int
	tail int
}

func NewRxBuffer(capacity int) *RxBuffer {
	return &RxBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of p as fits and returns the count written
func (r *RxBuffer) Write(p []byte) int {
	if len(p) > len(r.buf)-r.tail && r.head > 0 {
		r.compact()
	}
	n := copy(r.buf[r.tail:], p)
	r.tail += n
	return n
}

func (r *RxBuffer) compact() {
	n := copy(r.buf, r.buf[r.head:r.tail])
	r.head = 0
	r.tail = n
}

func (r *RxBuffer) Data() []byte   { return r.buf[r.head:r.tail] }
func (r *RxBuffer) Available() int { return r.tail - r.head }
func (r *RxBuffer) Free() int      { return len(r.buf) - r.Available() }
func (r *RxBuffer) IsEmpty() bool  { return r.head == r.tail }

// Pop discards n bytes from the front
func (r *RxBuffer) Pop(n int) {
	if n > r.Available() {
		n = r.Available()
	}
	r.head += n
	if r.head == r.tail {
		r.head, r.tail = 0, 0
	}
}

func (r *RxBuffer) Reset() { r.head, r.tail = 0, 0 }
