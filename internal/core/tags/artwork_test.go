package tags

import "testing"

func TestSniffMIME(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png signature", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, MIMEPNG},
		{"jpeg signature", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, MIMEJPEG},
		{"jpeg prefix too short", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J'}, ""},
		{"gif is not classified", []byte("GIF89a\x01\x00"), ""},
		{"empty", nil, ""},
		{"plain text", []byte("hello dear reader"), ""},
	}
	for _, c := range cases {
		if got := SniffMIME(c.data); got != c.want {
			t.Errorf("%s: SniffMIME = %q, expected %q", c.name, got, c.want)
		}
	}
}
