// Package protocol implements the framed serial link between the board
// and the host console: VLQ argument encoding, CRC16 framing with a
// rolling sequence number, and ACK/NAK flow control.
//
// Frame layout:
//
//	[len][seq] payload... [crc hi][crc lo][0x7E]
package protocol

// Version is the link protocol version reported in the dictionary
const Version = "blinky-link-1"

// Frame layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin

	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1

	MessageValueSync = 0x7E
	MessageDest      = 0x10
	MessageSeqMask   = 0x0F
)

// MessageMax is the size of the device-side scratch output buffer; it
// holds several frames between flushes.
const MessageMax = 512

// nextSeq returns the sequence number following seq
func nextSeq(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
