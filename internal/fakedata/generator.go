// Package fakedata builds the synthetic records published by the mock feed.
package fakedata

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"mock-status-feed/internal/models"
)

const ssnPattern = "###-##-####"

// Generator produces synthetic people and status snapshots. A Generator is
// not safe for concurrent use; give every connection its own.
type Generator struct {
	src   *rand.ChaCha8
	faker *gofakeit.Faker
}

// New returns a deterministic generator: equal seeds yield equal output.
func New(seed uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return fromKey(key)
}

// NewRandom returns a generator seeded from crypto/rand.
func NewRandom() *Generator {
	var key [32]byte
	_, _ = crand.Read(key[:])
	return fromKey(key)
}

func fromKey(key [32]byte) *Generator {
	src := rand.NewChaCha8(key)
	return &Generator{
		src:   src,
		faker: gofakeit.NewFaker(src, false),
	}
}

// Person returns a freshly randomized record.
func (g *Generator) Person() models.PersonRecord {
	return models.PersonRecord{
		Name:    g.faker.Name(),
		Company: g.faker.Company(),
		SSN:     g.faker.Numerify(ssnPattern),
		UUID:    g.hexUUID(),
	}
}

// Snapshot builds a complete payload with RecordsPerGroup people per list.
func (g *Generator) Snapshot() models.StatusSnapshot {
	return models.StatusSnapshot{
		Status: models.StatusGroup{
			Active:     g.people(models.RecordsPerGroup),
			Historical: g.people(models.RecordsPerGroup),
		},
		Tasks: g.people(models.RecordsPerGroup),
	}
}

func (g *Generator) people(n int) []models.PersonRecord {
	out := make([]models.PersonRecord, n)
	for i := range out {
		out[i] = g.Person()
	}
	return out
}

// hexUUID returns a v4 UUID in its 32 character hex form.
func (g *Generator) hexUUID() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 never fails a read.
		id = uuid.New()
	}
	return hex.EncodeToString(id[:])
}

// Factory returns a per-connection generator constructor. A zero seed gives
// every connection a crypto-seeded generator; any other seed gives the n-th
// connection New(seed+n), so runs are repeatable while connections still
// receive unrelated values.
func Factory(seed uint64) func() *Generator {
	if seed == 0 {
		return NewRandom
	}
	var n atomic.Uint64
	return func() *Generator {
		return New(seed + n.Add(1) - 1)
	}
}
