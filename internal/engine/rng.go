package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"strconv"
)

// ByteGenerator streams HMAC-SHA256 bytes for one (server, client, nonce)
// triple. Each 32-byte round is HMAC(server, "client:nonce:round").
type ByteGenerator struct {
	mac          hash.Hash
	clientSeed   string
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
	msg          []byte
}

// NewByteGenerator positions a generator at the given byte cursor
func NewByteGenerator(serverSeed, clientSeed string, nonce uint64, cursor uint64) *ByteGenerator {
	bg := &ByteGenerator{
		mac:          hmac.New(sha256.New, []byte(serverSeed)),
		clientSeed:   clientSeed,
		nonce:        nonce,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}
	bg.generateRound()
	return bg
}

// Next returns the next byte from the stream
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= 32 {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// NextFloat consumes exactly 4 bytes and returns a float in [0, 1)
func (bg *ByteGenerator) NextFloat() float64 {
	result := 0.0
	divider := 1.0
	for i := 0; i < 4; i++ {
		divider *= 256
		result += float64(bg.Next()) / divider
	}
	return result
}

func (bg *ByteGenerator) generateRound() {
	bg.msg = bg.msg[:0]
	bg.msg = append(bg.msg, bg.clientSeed...)
	bg.msg = append(bg.msg, ':')
	bg.msg = strconv.AppendUint(bg.msg, bg.nonce, 10)
	bg.msg = append(bg.msg, ':')
	bg.msg = strconv.AppendUint(bg.msg, bg.currentRound, 10)

	bg.mac.Reset()
	bg.mac.Write(bg.msg)
	copy(bg.buffer[:], bg.mac.Sum(nil))
}

// Floats generates count floats starting from the given cursor
func Floats(serverSeed, clientSeed string, nonce uint64, cursor uint64, count int) []float64 {
	bg := NewByteGenerator(serverSeed, clientSeed, nonce, cursor)
	floats := make([]float64, count)
	for i := range floats {
		floats[i] = bg.NextFloat()
	}
	return floats
}

// FaceFromFloat maps a float in [0, 1) onto a die face in [1, 6]
func FaceFromFloat(f float64) int {
	face := int(f*Faces) + 1
	if face > Faces {
		face = Faces
	}
	return face
}
