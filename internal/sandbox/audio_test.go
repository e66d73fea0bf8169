package sandbox

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestSilenceHeader(t *testing.T) {
	wav := silence(500 * time.Millisecond)
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad header %q", wav[:12])
	}
	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	if dataLen != 16000 || len(wav) != 44+16000 {
		t.Fatalf("data length = %d, total %d", dataLen, len(wav))
	}
}

func TestNextLineEndsScript(t *testing.T) {
	for i := 1; i <= len(questions["neutral"]); i++ {
		if _, done := nextLine("neutral", i); done {
			t.Fatalf("script over after %d answers", i)
		}
	}
	line, done := nextLine("neutral", len(questions["neutral"])+1)
	if !done || line != closing {
		t.Fatalf("got %q, %v", line, done)
	}
}
