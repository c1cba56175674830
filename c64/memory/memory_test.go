package memory

import (
	"bytes"
	"testing"

	"github.com/newhook/c64/c64/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestROMs(t *testing.T, m *Manager) {
	basic := make([]uint8, 8192)
	kernal := make([]uint8, 8192)
	char := make([]uint8, 4096)
	for i := range basic {
		basic[i] = 0xB0
		kernal[i] = 0xE0
	}
	for i := range char {
		char[i] = 0xC0
	}
	require.NoError(t, m.LoadROM(basic, "basic"))
	require.NoError(t, m.LoadROM(kernal, "kernal"))
	require.NoError(t, m.LoadROM(char, "char"))
}

func TestROMSizeValidation(t *testing.T) {
	assert := assert.New(t)
	m := NewManager()

	assert.Error(m.LoadROM(make([]uint8, 100), "basic"))
	assert.Error(m.LoadROM(make([]uint8, 8192), "char"))
	assert.Error(m.LoadROM(make([]uint8, 8192), "unknown"))
}

func TestBankingReads(t *testing.T) {
	assert := assert.New(t)
	m := NewManager()
	loadTestROMs(t, m)
	m.Map()

	assert.Equal(uint8(0xB0), m.Read(0xA000), "BASIC ROM visible with LORAM")
	assert.Equal(uint8(0xE0), m.Read(0xE000), "KERNAL ROM visible with HIRAM")

	// Writes land in the RAM underneath.
	m.Write(0xA000, 0x42)
	assert.Equal(uint8(0xB0), m.Read(0xA000))

	// Banking ROMs out exposes the RAM.
	m.Write(PROCESSOR_PORT, 0x34)
	assert.Equal(uint8(0x42), m.Read(0xA000))
}

func TestCharROMVersusIO(t *testing.T) {
	assert := assert.New(t)
	m := NewManager()
	loadTestROMs(t, m)
	m.Map()

	// CHAREN set: I/O visible.
	m.Write(0xD123, 0x55)
	assert.Equal(uint8(0x55), m.Read(0xD123))

	// CHAREN clear: char ROM visible to the CPU.
	m.Write(PROCESSOR_PORT, 0x33)
	assert.Equal(uint8(0xC0), m.Read(0xD123))
}

func TestVICView(t *testing.T) {
	assert := assert.New(t)
	m := NewManager()
	loadTestROMs(t, m)
	m.Map()

	view := m.VICView()

	m.Write(0x0400, 0x21)
	assert.Equal(uint8(0x21), view.Read(0x0400), "video matrix reads RAM")

	assert.Equal(uint8(0xC0), view.Read(0x1000), "char window reads char ROM regardless of banking")

	// Color RAM reads bypass banking.
	m.Write(0xD800, 0x07)
	assert.Equal(uint8(0x07), view.Read(0xD800))
}

func TestManagerSnapshotRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := NewManager()
	loadTestROMs(t, m)
	m.Map()
	m.Write(0x1234, 0x99)
	m.Write(0xD020, 0x0E)
	m.Write(PROCESSOR_PORT, 0x34)

	var buf bytes.Buffer
	w := snapshot.NewWriter(&buf)
	require.NoError(m.Save(w))

	restored := NewManager()
	loadTestROMs(t, restored)
	r := snapshot.NewReader(&buf)
	require.NoError(restored.Restore(r))

	assert.Equal(uint8(0x99), restored.Read(0x1234))
	assert.Equal(uint8(0x34), restored.Read(PROCESSOR_PORT))
	assert.Equal(m.config, restored.config)
}
