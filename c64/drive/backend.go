package drive

import (
	"errors"
	"fmt"
)

// BlockSize is the fixed sector payload of the block contract.
const BlockSize = 256

// Backend errors the job dispatcher maps onto firmware status codes.
var (
	ErrNotFound       = errors.New("block not found")
	ErrWriteProtected = errors.New("disk write protected")
	ErrNoDisk         = errors.New("no disk present")
)

// DiskBackend is the block-level contract the disk controller consumes.
// Implementations are expected to be synchronous; emulated cycles
// freeze while a call is in flight.
type DiskBackend interface {
	// GotoBlock positions the backend at the given track and sector.
	GotoBlock(track, sector int) error

	// ReadBlock returns the 256 bytes at the current position.
	ReadBlock() ([]byte, error)

	// WriteBlock stores 256 bytes at the current position.
	WriteBlock(data []byte) error
}

// SectorsPerTrack gives the sector count per track of a 35-track disk,
// indexed by track number (entry 0 unused).
var SectorsPerTrack = [36]int{
	0,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, // 1-10
	21, 21, 21, 21, 21, 21, 21, // 11-17
	19, 19, 19, 19, 19, 19, 19, // 18-24
	18, 18, 18, 18, 18, 18, // 25-30
	17, 17, 17, 17, 17, // 31-35
}

// RAMDisk is an in-memory DiskBackend. It carries a full 35-track
// block map, so the dispatcher and its tests run without any image
// parsing.
type RAMDisk struct {
	blocks       map[int][]byte
	current      int
	hasDisk      bool
	writeProtect bool
}

func NewRAMDisk() *RAMDisk {
	return &RAMDisk{
		blocks:  make(map[int][]byte),
		hasDisk: true,
	}
}

// SetWriteProtect toggles the write-protect tab.
func (d *RAMDisk) SetWriteProtect(on bool) { d.writeProtect = on }

// Eject removes the media; subsequent operations fail with ErrNoDisk.
func (d *RAMDisk) Eject() { d.hasDisk = false }

func blockKey(track, sector int) int {
	return track<<8 | sector
}

func (d *RAMDisk) GotoBlock(track, sector int) error {
	if !d.hasDisk {
		return ErrNoDisk
	}
	if track < 1 || track >= len(SectorsPerTrack) || sector < 0 || sector >= SectorsPerTrack[track] {
		return fmt.Errorf("%w: track %d sector %d", ErrNotFound, track, sector)
	}
	d.current = blockKey(track, sector)
	return nil
}

func (d *RAMDisk) ReadBlock() ([]byte, error) {
	if !d.hasDisk {
		return nil, ErrNoDisk
	}
	block := make([]byte, BlockSize)
	copy(block, d.blocks[d.current])
	return block, nil
}

func (d *RAMDisk) WriteBlock(data []byte) error {
	if !d.hasDisk {
		return ErrNoDisk
	}
	if d.writeProtect {
		return ErrWriteProtected
	}
	if len(data) != BlockSize {
		return fmt.Errorf("block must be %d bytes, got %d", BlockSize, len(data))
	}
	block := make([]byte, BlockSize)
	copy(block, data)
	d.blocks[d.current] = block
	return nil
}
