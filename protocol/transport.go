package protocol

// CommandHandler handles one decoded command. It decodes its own
// arguments from data, advancing it past them.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the device end of the link. Receive and SendCommand are
// called from the same loop; it is not safe for concurrent use.
type Transport struct {
	scanner frameScanner
	// nextSequence is both the sequence expected from the host and the
	// one stamped on outgoing ACKs and responses.
	nextSequence uint8
	output       OutputBuffer
	handler      CommandHandler

	resetCallback func()
	flushCallback func()
	errorCallback func(cmdID uint16, err error)
}

func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	t := &Transport{
		nextSequence: MessageDest,
		output:       output,
		handler:      handler,
	}
	t.scanner.onResync = t.encodeAckNak
	return t
}

// Receive processes every complete frame in input and pops the consumed
// bytes.
func (t *Transport) Receive(input InputBuffer) {
	n := t.scanner.scan(input.Data(), t.handleFrame)
	if n > 0 {
		input.Pop(n)
	}
}

func (t *Transport) handleFrame(seq uint8, payload []byte) {
	// A host restart begins again at MessageDest
	if seq == MessageDest && t.nextSequence != MessageDest {
		t.nextSequence = MessageDest
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}
	if seq == t.nextSequence {
		t.nextSequence = nextSeq(seq)
		t.parseFrame(payload)
	}
	// Out-of-order frames get the same reply, which acts as a NAK
	t.encodeAckNak()
}

// parseFrame dispatches each command in payload. A panicking handler
// desynchronises the link instead of crashing the firmware.
func (t *Transport) parseFrame(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			t.scanner.desync()
		}
	}()
	for len(payload) > 0 {
		cmdID, err := DecodeVLQUint(&payload)
		if err != nil {
			t.scanner.desync()
			return
		}
		if t.handler == nil {
			return
		}
		if err := t.handler(uint16(cmdID), &payload); err != nil {
			if t.errorCallback != nil {
				t.errorCallback(uint16(cmdID), err)
			}
			return
		}
	}
}

func (t *Transport) encodeAckNak() {
	var ack [MessageLengthMin]byte
	t.output.Output(AppendFrame(ack[:0], t.nextSequence, nil))
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// EncodeFrame writes one frame whose payload is produced by frameData
func (t *Transport) EncodeFrame(frameData func(output OutputBuffer)) {
	cursor := t.output.CurPosition()
	t.output.Output([]byte{0, t.nextSequence})
	frameData(t.output)
	t.output.Update(cursor, uint8(len(t.output.DataSince(cursor))+MessageTrailerSize))

	var trailer [MessageTrailerSize]byte
	t.output.Output(appendCRC(trailer[:0], t.output.DataSince(cursor)))
}

// SendCommand writes a frame with cmdID followed by its arguments
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) {
	t.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
}

// Reset returns the transport to its power-on state, e.g. after the USB
// host reconnects.
func (t *Transport) Reset() {
	t.scanner.reset()
	t.nextSequence = MessageDest
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

func (t *Transport) SetResetCallback(callback func()) { t.resetCallback = callback }

// SetFlushCallback is called right after every ACK is queued so it can be
// pushed out ahead of any response.
func (t *Transport) SetFlushCallback(callback func()) { t.flushCallback = callback }

// SetErrorCallback reports command handler errors
func (t *Transport) SetErrorCallback(callback func(cmdID uint16, err error)) {
	t.errorCallback = callback
}

// Stats returns framing counters
func (t *Transport) Stats() LinkStats { return t.scanner.stats() }

// Sequence returns the next expected host sequence
func (t *Transport) Sequence() uint8 { return t.nextSequence }
