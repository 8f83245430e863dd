// Package bytestream implements a bounded, in-memory FIFO byte buffer with
// an independent writer side and reader side, as used to carry bytes
// between the application and the TCP sender/receiver.
package bytestream

import (
	"errors"

	"github.com/soypat/minnet/internal"
)

var errZeroCapacity = errors.New("bytestream: capacity must be positive")

// Writer is the write half of a [ByteStream].
type Writer interface {
	Push(data []byte) int
	Close()
	SetError()
	Closed() bool
	AvailableCapacity() int
	BytesPushed() uint64
}

// Reader is the read half of a [ByteStream].
type Reader interface {
	Peek() []byte
	Pop(n int) int
	IsFinished() bool
	Error() bool
	BytesBuffered() int
	BytesPopped() uint64
}

// ByteStream is a bounded FIFO of bytes. It implements both [Writer] and
// [Reader]; callers that only need one side should take the narrower
// interface instead of *ByteStream so unit tests can substitute fakes.
type ByteStream struct {
	ring        internal.Ring
	scratch     []byte // reused by Peek to present a contiguous view.
	capacity    int
	bytesPushed uint64
	bytesPopped uint64
	closed      bool
	hasError    bool
}

// New returns a ByteStream able to hold up to capacity unread bytes.
// It panics if capacity is not positive: a stream always has room to
// hold at least one byte.
func New(capacity int) *ByteStream {
	if capacity <= 0 {
		panic(errZeroCapacity)
	}
	return &ByteStream{
		ring:     internal.Ring{Buf: make([]byte, capacity)},
		scratch:  make([]byte, capacity),
		capacity: capacity,
	}
}

// Push appends up to AvailableCapacity() bytes of data to the stream; any
// excess is silently dropped. Push is a no-op if the stream is closed or
// has its error flag set. It returns the number of bytes actually accepted.
func (s *ByteStream) Push(data []byte) int {
	if s.closed || s.hasError || len(data) == 0 {
		return 0
	}
	n := min(len(data), s.ring.Free())
	if n == 0 {
		return 0
	}
	written, err := s.ring.Write(data[:n])
	if err != nil {
		// Free()==0 handled above; any other error is a bug.
		panic(err)
	}
	s.bytesPushed += uint64(written)
	return written
}

// Close marks the stream as closed by its writer. Idempotent.
func (s *ByteStream) Close() { s.closed = true }

// SetError marks the stream with a sticky error flag, observable from
// both sides. It does not alter buffered data. Idempotent.
func (s *ByteStream) SetError() { s.hasError = true }

// Closed reports whether Close has been called.
func (s *ByteStream) Closed() bool { return s.closed }

// Error reports whether SetError has been called.
func (s *ByteStream) Error() bool { return s.hasError }

// BytesPushed returns the total number of bytes accepted by Push so far.
func (s *ByteStream) BytesPushed() uint64 { return s.bytesPushed }

// BytesPopped returns the total number of bytes consumed by Pop so far.
func (s *ByteStream) BytesPopped() uint64 { return s.bytesPopped }

// Buffered returns the number of bytes currently held, ready to be read.
func (s *ByteStream) Buffered() int { return s.ring.Buffered() }

// BytesBuffered is an alias of Buffered satisfying [Reader].
func (s *ByteStream) BytesBuffered() int { return s.Buffered() }

// AvailableCapacity returns how many more bytes may be pushed before the
// stream is full.
func (s *ByteStream) AvailableCapacity() int { return s.ring.Free() }

// Capacity returns the fixed total capacity the stream was created with.
func (s *ByteStream) Capacity() int { return s.capacity }

// Peek returns the contiguous buffered prefix without consuming it. The
// returned slice is only valid until the next call to Push, Peek or Pop.
func (s *ByteStream) Peek() []byte {
	n, err := s.ring.ReadPeek(s.scratch)
	if err != nil {
		return nil
	}
	return s.scratch[:n]
}

// Pop consumes min(n, Buffered()) bytes from the front of the stream and
// returns how many bytes were actually consumed.
func (s *ByteStream) Pop(n int) int {
	n = min(n, s.ring.Buffered())
	if n <= 0 {
		return 0
	}
	if err := s.ring.ReadDiscard(n); err != nil {
		panic(err)
	}
	s.bytesPopped += uint64(n)
	return n
}

// IsFinished reports whether the stream is closed and fully drained.
func (s *ByteStream) IsFinished() bool {
	return s.closed && s.Buffered() == 0
}
