package protocol

import (
	"bytes"
	"sync/atomic"
)

type scanStatus uint8

const (
	scanIncomplete scanStatus = iota
	scanOK
	scanInvalid
)

// scanFrame validates the frame at the start of data. data must not start
// with a sync byte.
func scanFrame(data []byte) (seq uint8, payload []byte, size int, st scanStatus) {
	if len(data) < MessageLengthMin {
		return 0, nil, 0, scanIncomplete
	}
	size = int(data[MessagePositionLen])
	if size < MessageLengthMin || size > MessageLengthMax {
		return 0, nil, 0, scanInvalid
	}
	seq = data[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return 0, nil, 0, scanInvalid
	}
	if len(data) < size {
		return 0, nil, 0, scanIncomplete
	}
	if data[size-MessageTrailerSync] != MessageValueSync {
		return 0, nil, 0, scanInvalid
	}
	got := uint16(data[size-MessageTrailerCRC])<<8 | uint16(data[size-MessageTrailerCRC+1])
	if got != CRC16(data[:size-MessageTrailerSize]) {
		return 0, nil, 0, scanInvalid
	}
	return seq, data[MessageHeaderSize : size-MessageTrailerSize], size, scanOK
}

// LinkStats counts framing outcomes on one end of the link
type LinkStats struct {
	Frames  uint32
	Errors  uint32
	Resyncs uint32
}

// frameScanner splits a byte stream into frames and resynchronises on the
// sync byte after a corrupt frame.
type frameScanner struct {
	unsynced uint32 // atomic bool, 0 = synchronised
	onResync func()

	frames  uint32
	errors  uint32
	resyncs uint32
}

func (f *frameScanner) synced() bool { return atomic.LoadUint32(&f.unsynced) == 0 }

func (f *frameScanner) desync() { atomic.StoreUint32(&f.unsynced, 1) }

func (f *frameScanner) reset() { atomic.StoreUint32(&f.unsynced, 0) }

// scan emits every complete frame in data and returns the number of bytes
// consumed. A trailing partial frame is left for the next call.
func (f *frameScanner) scan(data []byte, emit func(seq uint8, payload []byte)) int {
	total := len(data)
	for len(data) > 0 {
		if !f.synced() {
			i := bytes.IndexByte(data, MessageValueSync)
			if i < 0 {
				data = nil
				break
			}
			data = data[i+1:]
			f.reset()
			atomic.AddUint32(&f.resyncs, 1)
			if f.onResync != nil {
				f.onResync()
			}
			continue
		}
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		seq, payload, size, st := scanFrame(data)
		if st == scanIncomplete {
			break
		}
		if st == scanInvalid {
			atomic.AddUint32(&f.errors, 1)
			f.desync()
			continue
		}
		data = data[size:]
		atomic.AddUint32(&f.frames, 1)
		emit(seq, payload)
	}
	return total - len(data)
}

func (f *frameScanner) stats() LinkStats {
	return LinkStats{
		Frames:  atomic.LoadUint32(&f.frames),
		Errors:  atomic.LoadUint32(&f.errors),
		Resyncs: atomic.LoadUint32(&f.resyncs),
	}
}

// AppendFrame appends a complete frame carrying payload to dst.
func AppendFrame(dst []byte, seq uint8, payload []byte) []byte {
	start := len(dst)
	dst = append(dst, byte(len(payload)+MessageLengthMin), seq)
	dst = append(dst, payload...)
	return appendCRC(dst, dst[start:])
}
