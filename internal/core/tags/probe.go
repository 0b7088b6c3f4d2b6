package tags

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// audioProps carries the read-only stream properties a codec attaches to a
// freshly read record. Codecs that cannot determine a property leave it zero.
type audioProps struct {
	lengthSeconds uint
	bitrate       uint
	sampleRate    uint
	channels      uint
}

var (
	mp3BitratesV1L3 = [16]uint{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	mp3BitratesV2L3 = [16]uint{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}

	mp3SampleRatesV1  = [4]uint{44100, 48000, 32000, 0}
	mp3SampleRatesV2  = [4]uint{22050, 24000, 16000, 0}
	mp3SampleRatesV25 = [4]uint{11025, 12000, 8000, 0}
)

// probeMP3 locates the first MPEG audio frame header past the tag block and
// derives the stream properties from it. The duration is a constant-bitrate
// estimate over the bytes following the tag, which is what a header-only
// probe can offer.
func probeMP3(path string, tagSize int64) (audioProps, error) {
	f, err := os.Open(path)
	if err != nil {
		return audioProps{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return audioProps{}, err
	}
	if tagSize < 0 || tagSize >= fi.Size() {
		return audioProps{}, fmt.Errorf("no audio data past the tag in %s", path)
	}

	// The first frame is expected right after the tag; a bounded window
	// tolerates padding without scanning the whole file.
	window := make([]byte, 256*1024)
	n, err := f.ReadAt(window, tagSize)
	if err != nil && err != io.EOF {
		return audioProps{}, err
	}
	window = window[:n]

	for i := 0; i+4 <= len(window); i++ {
		if window[i] != 0xFF || window[i+1]&0xE0 != 0xE0 {
			continue
		}
		version := (window[i+1] >> 3) & 0x3
		layer := (window[i+1] >> 1) & 0x3
		bitrateIdx := (window[i+2] >> 4) & 0xF
		rateIdx := (window[i+2] >> 2) & 0x3
		channelMode := (window[i+3] >> 6) & 0x3

		// Only Layer III frames with a defined bitrate and sample rate
		// count as a hit; anything else is sync noise.
		if version == 1 || layer != 1 {
			continue
		}
		if bitrateIdx == 0 || bitrateIdx == 15 || rateIdx == 3 {
			continue
		}

		var props audioProps
		switch version {
		case 3: // MPEG-1
			props.bitrate = mp3BitratesV1L3[bitrateIdx]
			props.sampleRate = mp3SampleRatesV1[rateIdx]
		case 2: // MPEG-2
			props.bitrate = mp3BitratesV2L3[bitrateIdx]
			props.sampleRate = mp3SampleRatesV2[rateIdx]
		default: // MPEG-2.5
			props.bitrate = mp3BitratesV2L3[bitrateIdx]
			props.sampleRate = mp3SampleRatesV25[rateIdx]
		}
		if channelMode == 3 {
			props.channels = 1
		} else {
			props.channels = 2
		}
		audioBytes := fi.Size() - tagSize
		props.lengthSeconds = uint(audioBytes * 8 / (int64(props.bitrate) * 1000))
		return props, nil
	}
	return audioProps{}, fmt.Errorf("no MPEG audio frame found in %s", path)
}

// findAtom scans the box sequence in [start, end) for the named atom and
// returns the bounds of its payload.
func findAtom(r io.ReaderAt, start, end int64, name string) (int64, int64, error) {
	var hdr [8]byte
	for off := start; off+8 <= end; {
		if _, err := r.ReadAt(hdr[:], off); err != nil {
			return 0, 0, err
		}
		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		atomType := string(hdr[4:8])
		headerLen := int64(8)
		switch size {
		case 0:
			size = end - off
		case 1:
			var large [8]byte
			if _, err := r.ReadAt(large[:], off+8); err != nil {
				return 0, 0, err
			}
			size = int64(binary.BigEndian.Uint64(large[:]))
			headerLen = 16
		}
		if size < headerLen || off+size > end {
			return 0, 0, fmt.Errorf("malformed %q atom at offset %d", atomType, off)
		}
		if atomType == name {
			return off + headerLen, off + size, nil
		}
		off += size
	}
	return 0, 0, fmt.Errorf("no %q atom", name)
}

// probeMP4 reads the movie header to compute the duration and an overall
// bitrate estimate. Sample rate and channel count live in per-track sample
// descriptions this probe does not descend into, so they stay zero.
func probeMP4(path string) (audioProps, error) {
	f, err := os.Open(path)
	if err != nil {
		return audioProps{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return audioProps{}, err
	}

	moovStart, moovEnd, err := findAtom(f, 0, fi.Size(), "moov")
	if err != nil {
		return audioProps{}, err
	}
	mvhdStart, mvhdEnd, err := findAtom(f, moovStart, moovEnd, "mvhd")
	if err != nil {
		return audioProps{}, err
	}

	buf := make([]byte, mvhdEnd-mvhdStart)
	if _, err := f.ReadAt(buf, mvhdStart); err != nil {
		return audioProps{}, err
	}

	var timescale, duration uint64
	switch {
	case len(buf) >= 20 && buf[0] == 0:
		timescale = uint64(binary.BigEndian.Uint32(buf[12:16]))
		duration = uint64(binary.BigEndian.Uint32(buf[16:20]))
	case len(buf) >= 32 && buf[0] == 1:
		timescale = uint64(binary.BigEndian.Uint32(buf[20:24]))
		duration = binary.BigEndian.Uint64(buf[24:32])
	default:
		return audioProps{}, fmt.Errorf("unrecognized mvhd layout in %s", path)
	}
	if timescale == 0 {
		return audioProps{}, fmt.Errorf("mvhd timescale is zero in %s", path)
	}

	var props audioProps
	props.lengthSeconds = uint(duration / timescale)
	if props.lengthSeconds > 0 {
		props.bitrate = uint(uint64(fi.Size()) * 8 / uint64(props.lengthSeconds) / 1000)
	}
	return props, nil
}
