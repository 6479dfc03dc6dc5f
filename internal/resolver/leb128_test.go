package resolver

import "testing"

func TestDecodeULEB128(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want uint64
		n    int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"small", []byte{0x02}, 2, 1},
		{"three-byte", []byte{0xe5, 0x8e, 0x26}, 624485, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, n := decodeULEB128(c.in)
			if got != c.want || n != c.n {
				t.Errorf("decodeULEB128(%v) = (%d, %d), want (%d, %d)", c.in, got, n, c.want, c.n)
			}
		})
	}
}

func TestDecodeSLEB128(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int64
		n    int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"positive small", []byte{0x02}, 2, 1},
		{"negative small", []byte{0x7e}, -2, 1},
		{"negative three-byte", []byte{0x9b, 0xf1, 0x59}, -624485, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, n := decodeSLEB128(c.in)
			if got != c.want || n != c.n {
				t.Errorf("decodeSLEB128(%v) = (%d, %d), want (%d, %d)", c.in, got, n, c.want, c.n)
			}
		})
	}
}
