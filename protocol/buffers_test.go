package protocol

import (
	"bytes"
	"testing"
)

func TestScratchOutputPatchLength(t *testing.T) {
	s := NewScratchOutput()
	s.Output([]byte{0, MessageDest})
	s.Output([]byte{7, 8, 9})
	s.Update(0, byte(s.CurPosition()))

	if got := s.Result(); !bytes.Equal(got, []byte{5, MessageDest, 7, 8, 9}) {
		t.Errorf("unexpected buffer %v", got)
	}
	if since := s.DataSince(2); !bytes.Equal(since, []byte{7, 8, 9}) {
		t.Errorf("DataSince(2) = %v", since)
	}
	if s.DataSince(9) != nil {
		t.Errorf("DataSince past the end should be nil")
	}
	s.Reset()
	if s.CurPosition() != 0 {
		t.Errorf("Reset left position %d", s.CurPosition())
	}
}

func TestScratchOutputTruncates(t *testing.T) {
	s := NewScratchOutput()
	s.Output(make([]byte, MessageMax+10))
	if s.CurPosition() != MessageMax {
		t.Errorf("Expected truncation at %d, got %d", MessageMax, s.CurPosition())
	}
}

func TestRxBufferCompacts(t *testing.T) {
	r := NewRxBuffer(8)
	if n := r.Write([]byte{1, 2, 3, 4, 5, 6}); n != 6 {
		t.Fatalf("Expected 6 written, got %d", n)
	}
	r.Pop(4)
	if !bytes.Equal(r.Data(), []byte{5, 6}) {
		t.Fatalf("after Pop: %v", r.Data())
	}

	// Does not fit at the tail; must slide down first
	if n := r.Write([]byte{7, 8, 9, 10, 11}); n != 5 {
		t.Fatalf("Expected 5 written after compaction, got %d", n)
	}
	if !bytes.Equal(r.Data(), []byte{5, 6, 7, 8, 9, 10, 11}) {
		t.Errorf("contiguous data lost order: %v", r.Data())
	}
	if r.Free() != 1 {
		t.Errorf("Expected 1 byte free, got %d", r.Free())
	}

	if n := r.Write([]byte{12, 13}); n != 1 {
		t.Errorf("Expected a short write of 1, got %d", n)
	}
	r.Pop(100)
	if !r.IsEmpty() || r.Available() != 0 {
		t.Errorf("Pop past the end should empty the buffer")
	}
}
