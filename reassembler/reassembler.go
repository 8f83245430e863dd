// Package reassembler stitches arbitrary, possibly out-of-order byte
// ranges into a single in-order stream, as required to turn a sequence
// of TCP segments back into a byte stream.
package reassembler

import "github.com/soypat/minnet/bytestream"

// optByte is a single byte slot that may or may not have been filled yet.
type optByte struct {
	b     byte
	valid bool
}

// Reassembler buffers out-of-order byte ranges for a single receiving
// stream and pushes them to a [bytestream.Writer] in order as they become
// contiguous.
type Reassembler struct {
	firstUnassembled uint64
	buf              []optByte // buf[i] holds the byte at absolute index firstUnassembled+i.
	pending          int       // bytes_pending: stored but not yet contiguous.
	endIndex         *uint64   // absolute index one past the last stream byte, once known.
	out              []byte    // scratch reused to batch the contiguous drain into one Push call.
}

// New returns an empty Reassembler ready to insert into writer.
func New() *Reassembler {
	return &Reassembler{}
}

// BytesPending returns the number of buffered bytes that have not yet been
// delivered to the writer because they are not yet contiguous with
// first_unassembled.
func (r *Reassembler) BytesPending() int { return r.pending }

// Insert buffers data starting at the absolute index firstIndex. If
// isLast, firstIndex+len(data) is recorded as the one-past-the-end index
// of the stream. Any prefix of data already assembled, and any suffix
// falling outside the writer's available capacity, is dropped silently;
// the peer is expected to retransmit. Contiguous bytes accumulated at the
// front of the window are pushed to writer in a single call, in strictly
// ascending order.
func (r *Reassembler) Insert(firstIndex uint64, data []byte, isLast bool, writer bytestream.Writer) {
	if isLast {
		end := firstIndex + uint64(len(data))
		r.endIndex = &end
	}

	windowEnd := r.firstUnassembled + uint64(writer.AvailableCapacity())
	// Clip data to the writable window [firstUnassembled, windowEnd).
	last := firstIndex + uint64(len(data)) // exclusive
	if last > windowEnd {
		over := last - windowEnd
		if over >= uint64(len(data)) {
			data = nil
		} else {
			data = data[:uint64(len(data))-over]
		}
	}
	if firstIndex < r.firstUnassembled {
		skip := r.firstUnassembled - firstIndex
		if skip >= uint64(len(data)) {
			data = nil
		} else {
			data = data[skip:]
		}
		firstIndex = r.firstUnassembled
	}

	if len(data) > 0 {
		needLen := int(firstIndex-r.firstUnassembled) + len(data)
		if needLen > len(r.buf) {
			grown := make([]optByte, needLen)
			copy(grown, r.buf)
			r.buf = grown
		}
		for i, b := range data {
			slot := &r.buf[int(firstIndex-r.firstUnassembled)+i]
			if !slot.valid {
				slot.b = b
				slot.valid = true
				r.pending++
			}
		}
	}

	r.drain(writer)

	if r.endIndex != nil && *r.endIndex <= r.firstUnassembled && !writer.Closed() {
		writer.Close()
	}
}

// drain pops every contiguously-stored byte at the front of buf into a
// single contiguous slice and pushes it to writer in one call.
func (r *Reassembler) drain(writer bytestream.Writer) {
	n := 0
	for n < len(r.buf) && r.buf[n].valid {
		n++
	}
	if n == 0 {
		return
	}
	if cap(r.out) < n {
		r.out = make([]byte, n)
	}
	r.out = r.out[:n]
	for i := 0; i < n; i++ {
		r.out[i] = r.buf[i].b
	}
	r.buf = r.buf[n:]
	r.pending -= n
	r.firstUnassembled += uint64(n)
	writer.Push(r.out)
}
