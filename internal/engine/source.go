package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Faces is the number of sides on a Sic Bo die.
const Faces = 6

// DicePerRoll is the number of dice thrown per trial.
const DicePerRoll = 3

// DieSource yields independent uniform die faces in [1, Faces].
// Implementations are not safe for concurrent use; give each goroutine its own.
type DieSource interface {
	Draw() int
}

// Roll draws one three-dice roll from src.
func Roll(src DieSource) [DicePerRoll]int {
	var dice [DicePerRoll]int
	for i := range dice {
		dice[i] = src.Draw()
	}
	return dice
}

type rngSource struct {
	r *rand.Rand
}

func (s *rngSource) Draw() int {
	return s.r.IntN(Faces) + 1
}

// NewSeededSource returns a reproducible PCG-backed source. Distinct streams
// under the same seed are independent, which is how batch and cohort runs
// derive one source per work unit.
func NewSeededSource(seed, stream uint64) DieSource {
	return &rngSource{r: rand.New(rand.NewPCG(seed, stream))}
}

// NewRandomSource returns a ChaCha8 source keyed from crypto/rand.
func NewRandomSource() DieSource {
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is unusable
		panic(fmt.Sprintf("engine: reading entropy: %v", err))
	}
	return &rngSource{r: rand.New(rand.NewChaCha8(key))}
}

// RandomSeed returns a crypto-random seed for runs that did not request one.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("engine: reading entropy: %v", err))
	}
	return binary.LittleEndian.Uint64(b[:])
}

// HMACSource replays the provably-fair stream: every roll consumes the first
// three floats of one nonce, then the nonce advances. Roll k therefore equals
// the verified result for nonce start+k.
type HMACSource struct {
	serverSeed string
	clientSeed string
	nonce      uint64
	drawn      int
	bg         *ByteGenerator
}

// NewHMACSource starts the stream at the given nonce.
func NewHMACSource(serverSeed, clientSeed string, nonce uint64) *HMACSource {
	return &HMACSource{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
	}
}

// Draw returns the next face of the current nonce.
func (s *HMACSource) Draw() int {
	if s.bg == nil || s.drawn == DicePerRoll {
		if s.bg != nil {
			s.nonce++
		}
		s.bg = NewByteGenerator(s.serverSeed, s.clientSeed, s.nonce, 0)
		s.drawn = 0
	}
	s.drawn++
	return FaceFromFloat(s.bg.NextFloat())
}

// Nonce reports the nonce the next or current roll is drawn from.
func (s *HMACSource) Nonce() uint64 {
	if s.bg != nil && s.drawn == DicePerRoll {
		return s.nonce + 1
	}
	return s.nonce
}

// QueueSource replays a fixed list of faces, for deterministic tests and
// scripted demonstrations. It panics when exhausted.
type QueueSource struct {
	faces []int
	pos   int
}

// NewQueueSource builds a source that yields faces in order.
func NewQueueSource(faces ...int) *QueueSource {
	return &QueueSource{faces: append([]int(nil), faces...)}
}

// Draw returns the next queued face.
func (q *QueueSource) Draw() int {
	if q.pos >= len(q.faces) {
		panic("engine: queue source exhausted")
	}
	f := q.faces[q.pos]
	q.pos++
	return f
}
