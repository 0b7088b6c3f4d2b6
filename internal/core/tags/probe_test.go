package tags

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProbeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create probe file: %v", err)
	}
	return path
}

func TestProbeMP3(t *testing.T) {
	// MPEG-1 Layer III, 128 kbps, 44.1 kHz, stereo. 32000 bytes of audio
	// at 128 kbps is a 2 second stream.
	data := make([]byte, 32000)
	copy(data, []byte{0xFF, 0xFB, 0x90, 0x00})
	path := writeProbeFile(t, data)

	props, err := probeMP3(path, 0)
	if err != nil {
		t.Fatalf("probeMP3 failed: %v", err)
	}
	if props.bitrate != 128 {
		t.Errorf("Expected 128 kbps, got %d", props.bitrate)
	}
	if props.sampleRate != 44100 {
		t.Errorf("Expected 44100 Hz, got %d", props.sampleRate)
	}
	if props.channels != 2 {
		t.Errorf("Expected stereo, got %d channels", props.channels)
	}
	if props.lengthSeconds != 2 {
		t.Errorf("Expected 2 second duration, got %d", props.lengthSeconds)
	}
}

func TestProbeMP3PastTag(t *testing.T) {
	// A 100 byte tag block, then an MPEG-2 Layer III mono frame at 64 kbps
	// and 22.05 kHz. Only the 16000 audio bytes past the tag count toward
	// the duration.
	data := make([]byte, 100+16000)
	copy(data[100:], []byte{0xFF, 0xF3, 0x80, 0xC0})
	path := writeProbeFile(t, data)

	props, err := probeMP3(path, 100)
	if err != nil {
		t.Fatalf("probeMP3 failed: %v", err)
	}
	if props.bitrate != 64 {
		t.Errorf("Expected 64 kbps, got %d", props.bitrate)
	}
	if props.sampleRate != 22050 {
		t.Errorf("Expected 22050 Hz, got %d", props.sampleRate)
	}
	if props.channels != 1 {
		t.Errorf("Expected mono, got %d channels", props.channels)
	}
	if props.lengthSeconds != 2 {
		t.Errorf("Expected 2 second duration, got %d", props.lengthSeconds)
	}
}

func TestProbeMP3NoFrame(t *testing.T) {
	path := writeProbeFile(t, make([]byte, 4096))
	if _, err := probeMP3(path, 0); err == nil {
		t.Error("Expected an error for a file with no audio frame")
	}
}

func TestProbeMP3TagCoversFile(t *testing.T) {
	path := writeProbeFile(t, make([]byte, 64))
	if _, err := probeMP3(path, 64); err == nil {
		t.Error("Expected an error when the tag spans the whole file")
	}
}

// mvhdFile builds ftyp + moov/mvhd with a version 0 movie header.
func mvhdFile(timescale, duration uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 16})
	buf.WriteString("ftypM4A ")
	buf.Write([]byte{0, 0, 0, 0})

	payload := make([]byte, 20)
	binary.BigEndian.PutUint32(payload[12:16], timescale)
	binary.BigEndian.PutUint32(payload[16:20], duration)

	buf.Write([]byte{0, 0, 0, 36})
	buf.WriteString("moov")
	buf.Write([]byte{0, 0, 0, 28})
	buf.WriteString("mvhd")
	buf.Write(payload)
	return buf.Bytes()
}

func TestProbeMP4(t *testing.T) {
	path := writeProbeFile(t, mvhdFile(600, 3000))

	props, err := probeMP4(path)
	if err != nil {
		t.Fatalf("probeMP4 failed: %v", err)
	}
	if props.lengthSeconds != 5 {
		t.Errorf("Expected 5 second duration, got %d", props.lengthSeconds)
	}
	// A 52 byte file over 5 seconds rounds to a zero kbps estimate.
	if props.bitrate != 0 {
		t.Errorf("Expected a zero bitrate estimate, got %d", props.bitrate)
	}
}

func TestProbeMP4ZeroTimescale(t *testing.T) {
	path := writeProbeFile(t, mvhdFile(0, 3000))
	if _, err := probeMP4(path); err == nil {
		t.Error("Expected an error for a zero timescale")
	}
}

func TestProbeMP4NoMovieBox(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 16})
	buf.WriteString("ftypM4A ")
	buf.Write([]byte{0, 0, 0, 0})
	path := writeProbeFile(t, buf.Bytes())

	if _, err := probeMP4(path); err == nil {
		t.Error("Expected an error when no moov atom exists")
	}
}

func TestFindAtom(t *testing.T) {
	// A 64-bit-size atom first, then the target.
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 1})
	buf.WriteString("free")
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 20})
	buf.Write([]byte{1, 2, 3, 4})
	buf.Write([]byte{0, 0, 0, 12})
	buf.WriteString("moov")
	buf.Write([]byte{9, 9, 9, 9})
	data := buf.Bytes()

	r := bytes.NewReader(data)
	start, end, err := findAtom(r, 0, int64(len(data)), "moov")
	if err != nil {
		t.Fatalf("findAtom failed: %v", err)
	}
	if start != 28 || end != 32 {
		t.Errorf("Expected payload bounds [28, 32), got [%d, %d)", start, end)
	}

	if _, _, err := findAtom(r, 0, int64(len(data)), "trak"); err == nil || !strings.Contains(err.Error(), "trak") {
		t.Errorf("Expected a missing-atom error naming trak, got %v", err)
	}
}

func TestFindAtomRejectsMalformedSize(t *testing.T) {
	// A declared size smaller than the atom header itself.
	data := []byte{0, 0, 0, 3, 'm', 'o', 'o', 'v'}
	if _, _, err := findAtom(bytes.NewReader(data), 0, int64(len(data)), "moov"); err == nil {
		t.Error("Expected a malformed-atom error")
	}
}
