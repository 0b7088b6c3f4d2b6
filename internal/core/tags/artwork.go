package tags

import "bytes"

// MIME types for the two cover formats every dialect can store.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// SniffMIME identifies cover image data by its leading byte signature.
// Buffers shorter than eight bytes are never classified, so a truncated
// JPEG prefix does not pass as a usable image. Unknown data yields "".
func SniffMIME(data []byte) string {
	if len(data) < 8 {
		return ""
	}
	if bytes.HasPrefix(data, pngSignature) {
		return MIMEPNG
	}
	if data[0] == 0xFF && data[1] == 0xD8 {
		return MIMEJPEG
	}
	return ""
}
