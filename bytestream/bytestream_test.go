package bytestream

import "testing"

func TestPushPeekPop(t *testing.T) {
	// "cat" through a capacity-2 stream: only "ca" fits.
	s := New(2)
	n := s.Push([]byte("cat"))
	if n != 2 {
		t.Fatalf("want 2 bytes accepted, got %d", n)
	}
	if got := s.Peek(); string(got) != "ca" {
		t.Fatalf("want peek %q, got %q", "ca", got)
	}
	if s.BytesPushed() != 2 {
		t.Fatalf("want bytes_pushed=2, got %d", s.BytesPushed())
	}
	if s.AvailableCapacity() != 0 {
		t.Fatalf("want available_capacity=0, got %d", s.AvailableCapacity())
	}
	popped := s.Pop(2)
	if popped != 2 {
		t.Fatalf("want 2 bytes popped, got %d", popped)
	}
	if s.Buffered() != 0 {
		t.Fatalf("want buffered=0, got %d", s.Buffered())
	}
	if s.BytesPopped() != 2 {
		t.Fatalf("want bytes_popped=2, got %d", s.BytesPopped())
	}
}

func TestInvariants(t *testing.T) {
	const capacity = 4
	s := New(capacity)
	pushes := [][]byte{[]byte("ab"), []byte("cdef"), nil, []byte("g")}
	for _, p := range pushes {
		s.Push(p)
		if s.BytesPushed()-s.BytesPopped() != uint64(s.Buffered()) {
			t.Fatalf("bytes_pushed-bytes_popped != buffered")
		}
		if s.AvailableCapacity()+s.Buffered() != capacity {
			t.Fatalf("available_capacity+buffered != capacity")
		}
		s.Pop(1)
		if s.BytesPushed()-s.BytesPopped() != uint64(s.Buffered()) {
			t.Fatalf("bytes_pushed-bytes_popped != buffered after pop")
		}
	}
}

func TestCloseIsFinished(t *testing.T) {
	s := New(4)
	s.Push([]byte("hi"))
	if s.IsFinished() {
		t.Fatal("should not be finished: not closed")
	}
	s.Close()
	if s.IsFinished() {
		t.Fatal("should not be finished: bytes still buffered")
	}
	s.Pop(2)
	if !s.IsFinished() {
		t.Fatal("should be finished: closed and drained")
	}
	// Close and SetError are idempotent and sticky.
	s.Close()
	if !s.Closed() {
		t.Fatal("closed should remain true")
	}
	s.SetError()
	s.SetError()
	if !s.Error() {
		t.Fatal("error should remain true")
	}
}

func TestPushAfterCloseOrErrorIsNoop(t *testing.T) {
	s := New(4)
	s.Close()
	if n := s.Push([]byte("x")); n != 0 {
		t.Fatalf("push after close should be a no-op, accepted %d", n)
	}
	s2 := New(4)
	s2.SetError()
	if n := s2.Push([]byte("x")); n != 0 {
		t.Fatalf("push after error should be a no-op, accepted %d", n)
	}
}

func TestExcessPushSilentlyDropped(t *testing.T) {
	s := New(2)
	n := s.Push([]byte("abcdef"))
	if n != 2 {
		t.Fatalf("want 2 accepted, got %d", n)
	}
	if s.BytesPushed() != 2 {
		t.Fatalf("want bytes_pushed=2 (not 6), got %d", s.BytesPushed())
	}
}
