package core

// memBank is an OutputBank that records levels and writes per channel.
type memBank struct {
	levels []bool
	writes []int
}

func newMemBank(n int) *memBank {
	return &memBank{levels: make([]bool, n), writes: make([]int, n)}
}

func (m *memBank) Len() int { return len(m.levels) }

func (m *memBank) Set(ch int, on bool) {
	m.levels[ch] = on
	m.writes[ch]++
}

func (m *memBank) lit() []int {
	var out []int
	for i, on := range m.levels {
		if on {
			out = append(out, i)
		}
	}
	return out
}

// fakeLine is a settable InputLine
type fakeLine struct{ level bool }

func (f *fakeLine) Get() bool { return f.level }
