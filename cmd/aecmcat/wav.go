package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Minimal mono 16-bit PCM WAV reader/writer. The upstream CLI this tool is
// modeled on (original_source/main.c) leans on an external single-header
// WAV library for this; no WAV container library appears anywhere in the
// example corpus, and the codec being exercised here is the echo canceller,
// not WAV itself, so this stays a narrow stdlib shim rather than pulling in
// an out-of-pack dependency for it. See DESIGN.md.

type wavFile struct {
	SampleRate int
	Samples    []int16
}

func readWavMono16(path string) (*wavFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var riffHdr [12]byte
	if _, err := io.ReadFull(f, riffHdr[:]); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riffHdr[0:4]) != "RIFF" || string(riffHdr[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%s: not a RIFF/WAVE file", path)
	}

	var sampleRate int
	var channels int
	var bitsPerSample int
	var data []byte

	for {
		var chunkHdr [8]byte
		if _, err := io.ReadFull(f, chunkHdr[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunkHdr[0:4])
		size := binary.LittleEndian.Uint32(chunkHdr[4:8])
		body := make([]byte, size)
		if _, err := io.ReadFull(f, body); err != nil {
			return nil, fmt.Errorf("read %q chunk body: %w", id, err)
		}
		if size%2 == 1 {
			var pad [1]byte
			io.ReadFull(f, pad[:])
		}

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, fmt.Errorf("fmt chunk too short")
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			data = body
		}
	}

	if channels != 1 {
		return nil, fmt.Errorf("%s: only mono WAV is supported, got %d channels", path, channels)
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("%s: only 16-bit PCM is supported, got %d bits", path, bitsPerSample)
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return &wavFile{SampleRate: sampleRate, Samples: samples}, nil
}

func writeWavMono16(path string, sampleRate int, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dataSize := len(samples) * 2
	byteRate := sampleRate * 2
	blockAlign := 2

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], 1) // mono
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], 16) // bits per sample
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))

	if _, err := f.Write(hdr[:]); err != nil {
		return err
	}
	body := make([]byte, dataSize)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(body[2*i:], uint16(v))
	}
	_, err = f.Write(body)
	return err
}
