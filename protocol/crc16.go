package protocol

// CRC16 computes the CRC-16/MCRF4XX checksum used by the link framing
// (reflected CCITT polynomial, initial value 0xFFFF).
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ (w >> 4) ^ (w << 3)
	}
	return crc
}

// appendCRC appends the big-endian CRC of frame and the sync byte
func appendCRC(dst []byte, frame []byte) []byte {
	crc := CRC16(frame)
	return append(dst, byte(crc>>8), byte(crc), MessageValueSync)
}
