package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrClosed is returned once the transport has been closed
var ErrClosed = errors.New("transport closed")

// DefaultAckTimeout bounds how long SendCommand waits for the board
const DefaultAckTimeout = 2 * time.Second

// Message is one received frame
type Message struct {
	Sequence uint8
	Payload  []byte // command ID followed by arguments
}

// CommandID decodes the leading command ID of the payload
func (m *Message) CommandID() (uint16, []byte, error) {
	data := m.Payload
	id, err := DecodeVLQUint(&data)
	return uint16(id), data, err
}

// HostTransport is the host end of the link. It owns a reader goroutine;
// SendCommand may be called from several goroutines.
type HostTransport struct {
	port    io.ReadWriteCloser
	scanner frameScanner

	sendMu sync.Mutex
	seq    uint8

	rx        *RxBuffer
	acks      chan uint8
	responses chan *Message

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewHostTransport starts reading from port
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:      port,
		seq:       MessageDest,
		rx:        NewRxBuffer(1024),
		acks:      make(chan uint8, 4),
		responses: make(chan *Message, 32),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// SendCommand sends cmdID with its arguments and waits for the board's ACK
func (t *HostTransport) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	return t.SendCommandWithTimeout(cmdID, args, DefaultAckTimeout)
}

func (t *HostTransport) SendCommandWithTimeout(cmdID uint16, args func(output OutputBuffer), timeout time.Duration) error {
	payload := NewScratchOutput()
	EncodeVLQUint(payload, uint32(cmdID))
	if args != nil {
		args(payload)
	}
	if n := payload.CurPosition(); n > MessagePayloadMax {
		return fmt.Errorf("command %d: payload of %d bytes exceeds %d", cmdID, n, MessagePayloadMax)
	}

	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	// A NAK carries the sequence the board expects; resend once with it.
	for resent := false; ; resent = true {
		msg := AppendFrame(make([]byte, 0, MessageLengthMax), t.seq, payload.Result())
		if _, err := t.port.Write(msg); err != nil {
			return fmt.Errorf("write command %d: %w", cmdID, err)
		}
		want := nextSeq(t.seq)
	wait:
		for {
			select {
			case got := <-t.acks:
				if got == want {
					t.seq = want
					return nil
				}
				if !resent {
					t.seq = got
					break wait
				}
			case <-deadline.C:
				return fmt.Errorf("command %d: no ACK after %v", cmdID, timeout)
			case <-t.stop:
				return ErrClosed
			}
		}
	}
}

// ReceiveResponse returns the next response frame
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (*Message, error) {
	select {
	case m := <-t.responses:
		return m, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no response after %v", timeout)
	case <-t.stop:
		return nil, ErrClosed
	}
}

func (t *HostTransport) readLoop() {
	defer close(t.done)
	buf := make([]byte, 256)
	for {
		select {
		case <-t.stop:
			return
		default:
		}
		n, err := t.port.Read(buf)
		if n > 0 {
			t.feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// feed pushes received bytes through the frame scanner
func (t *HostTransport) feed(p []byte) {
	for len(p) > 0 {
		w := t.rx.Write(p)
		p = p[w:]
		n := t.scanner.scan(t.rx.Data(), t.dispatch)
		t.rx.Pop(n)
		if w == 0 && n == 0 {
			// Buffer full of garbage with no frame boundary
			t.rx.Reset()
			t.scanner.desync()
		}
	}
}

func (t *HostTransport) dispatch(seq uint8, payload []byte) {
	if len(payload) == 0 {
		select {
		case t.acks <- seq:
		default:
		}
		return
	}
	m := &Message{Sequence: seq, Payload: append([]byte(nil), payload...)}
	select {
	case t.responses <- m:
	default:
		// Drop the oldest response to make room
		select {
		case <-t.responses:
		default:
		}
		t.responses <- m
	}
}

// Stats returns framing counters for received data
func (t *HostTransport) Stats() LinkStats { return t.scanner.stats() }

// Sequence returns the sequence number the next command will use
func (t *HostTransport) Sequence() uint8 {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	return t.seq
}

// Close stops the reader and closes the port
func (t *HostTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stop)
		err = t.port.Close()
		<-t.done
	})
	return err
}
