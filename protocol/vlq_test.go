package protocol

import (
	"bytes"
	"testing"
)

func TestVLQRoundTripInt(t *testing.T) {
	values := []int32{0, 1, -1, 31, -32, 95, 96, -33, 127, -128, 1000, -1000,
		65535, -65535, 1 << 26, -(1 << 26), 2147483647, -2147483648}

	for _, want := range values {
		out := NewScratchOutput()
		EncodeVLQInt(out, want)
		data := out.Result()
		got, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("decode %d: %v", want, err)
			continue
		}
		if got != want {
			t.Errorf("VLQ mismatch: want %d, got %d (encoded %v)", want, got, out.Result())
		}
		if len(data) != 0 {
			t.Errorf("value %d left %d bytes undecoded", want, len(data))
		}
	}
}

func TestVLQEncodedLengths(t *testing.T) {
	cases := []struct {
		v    int32
		size int
	}{
		{0, 1}, {95, 1}, {-32, 1}, {96, 2}, {-33, 2}, {1500, 2}, {1 << 20, 3}, {-1, 1},
	}
	for _, tc := range cases {
		if got := len(AppendVLQ(nil, tc.v)); got != tc.size {
			t.Errorf("AppendVLQ(%d): %d bytes, want %d", tc.v, got, tc.size)
		}
	}
}

func TestVLQUintLarge(t *testing.T) {
	out := NewScratchOutput()
	EncodeVLQUint(out, 0xFFFFFFF0)
	data := out.Result()
	got, err := DecodeVLQUint(&data)
	if err != nil || got != 0xFFFFFFF0 {
		t.Errorf("Expected 0xFFFFFFF0, got %x (%v)", got, err)
	}
}

func TestVLQBytesAndString(t *testing.T) {
	out := NewScratchOutput()
	EncodeVLQBytes(out, []byte{0xFF, 0x00, 0x7E})
	EncodeVLQString(out, "sequence")
	data := out.Result()

	b, err := DecodeVLQBytes(&data)
	if err != nil || !bytes.Equal(b, []byte{0xFF, 0x00, 0x7E}) {
		t.Fatalf("bytes decode: %v %v", b, err)
	}
	s, err := DecodeVLQString(&data)
	if err != nil || s != "sequence" {
		t.Fatalf("string decode: %q %v", s, err)
	}
}

func TestVLQTruncated(t *testing.T) {
	data := []byte{0x80}
	if _, err := DecodeVLQInt(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
	data = []byte{0x85, 0x01, 0x02}
	if _, err := DecodeVLQBytes(&data); err != nil {
		// 0x85 0x01 decodes to a large length with only one byte following
		if err != ErrBufferTooSmall {
			t.Errorf("Expected ErrBufferTooSmall, got %v", err)
		}
	} else {
		t.Errorf("Expected an error for a short byte string")
	}
	data = []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeVLQInt(&data); err != ErrInvalidVLQ {
		t.Errorf("Expected ErrInvalidVLQ for 6-byte encoding, got %v", err)
	}
}
