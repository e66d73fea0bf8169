package sandbox

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/gofiber/fiber/v2"
)

const sampleRate = 16000

// silence returns a mono 16-bit PCM WAV of the given length.
func silence(d time.Duration) []byte {
	samples := int(d.Seconds() * sampleRate)
	dataLen := samples * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

// handleAudio answers with silence lasting roughly as long as reading text
// aloud would.
func (s *Server) handleAudio(c *fiber.Ctx) error {
	s.mu.Lock()
	sess := s.lookup(c)
	s.mu.Unlock()
	if sess == nil {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}

	words := len(bytes.Fields([]byte(c.Query("text"))))
	d := time.Duration(words) * 60 * time.Millisecond
	if d > 3*time.Second {
		d = 3 * time.Second
	}
	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.Send(silence(d + 200*time.Millisecond))
}
