package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueJob writes a job into the given slot of the drive's RAM.
func queueJob(d *Drive, slot int, cmd, track, sector uint8) {
	mem := d.Memory()
	mem[slot] = cmd
	mem[jobTrackBase+2*slot] = track
	mem[jobTrackBase+1+2*slot] = sector
}

// dispatch runs the drive into the job-queue trap.
func dispatch(d *Drive) {
	d.CPU.PC = 0xF2B0
	d.Step()
}

func TestJobRead(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	disk := NewRAMDisk()
	block := make([]byte, BlockSize)
	for i := range block {
		block[i] = uint8(i ^ 0x5A)
	}
	require.NoError(disk.GotoBlock(18, 1))
	require.NoError(disk.WriteBlock(block))

	d := NewDrive(disk)
	require.NoError(d.LoadROM(testROM(0xC000)))

	queueJob(d, 0, JobRead, 18, 1)
	dispatch(d)

	mem := d.Memory()
	assert.Equal(block, []byte(mem[0x0300:0x0400]), "block copied into the slot buffer")
	assert.Equal(uint8(1), mem[regLastSector])
	assert.Equal(uint8(StatusOK), mem[0], "status replaces the command byte")
	assert.Equal(uint8(0), mem[regCurrentSlot])
	assert.Equal(uint16(jobReturnPC), d.CPU.PC)
	assert.True(d.Active())
}

func TestJobWrite(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	disk := NewRAMDisk()
	d := NewDrive(disk)
	require.NoError(d.LoadROM(testROM(0xC000)))

	mem := d.Memory()
	for i := 0; i < BlockSize; i++ {
		mem[0x0400+i] = uint8(i)
	}
	queueJob(d, 1, JobWrite, 20, 3)
	dispatch(d)

	assert.Equal(uint8(StatusOK), mem[1])
	assert.Equal(uint8(3), mem[regLastSector])

	require.NoError(disk.GotoBlock(20, 3))
	stored, err := disk.ReadBlock()
	require.NoError(err)
	assert.Equal([]byte(mem[0x0400:0x0500]), stored)
}

func TestJobStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(disk *RAMDisk)
		cmd    uint8
		track  uint8
		sector uint8
		status uint8
	}{
		{
			name:   "read from a track past the end",
			cmd:    JobRead,
			track:  40,
			sector: 0,
			status: StatusNotFound,
		},
		{
			name:   "read from a sector past the track",
			cmd:    JobRead,
			track:  31,
			sector: 20,
			status: StatusNotFound,
		},
		{
			name:   "write to protected disk",
			setup:  func(disk *RAMDisk) { disk.SetWriteProtect(true) },
			cmd:    JobWrite,
			track:  18,
			sector: 0,
			status: StatusWriteProtect,
		},
		{
			name:   "read with no disk",
			setup:  func(disk *RAMDisk) { disk.Eject() },
			cmd:    JobRead,
			track:  18,
			sector: 0,
			status: StatusNoDisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disk := NewRAMDisk()
			if tt.setup != nil {
				tt.setup(disk)
			}
			d := NewDrive(disk)
			require.NoError(t, d.LoadROM(testROM(0xC000)))

			queueJob(d, 0, tt.cmd, tt.track, tt.sector)
			dispatch(d)
			assert.Equal(t, tt.status, d.Memory()[0])
		})
	}
}

func TestJobVerifyAndBump(t *testing.T) {
	assert := assert.New(t)
	d := newTestDrive(t, testROM(0xC000))

	queueJob(d, 2, JobVerify, 18, 0)
	queueJob(d, 3, JobBump, 0, 0)
	dispatch(d)

	assert.Equal(uint8(StatusOK), d.Memory()[2])
	assert.Equal(uint8(StatusOK), d.Memory()[3])
}

func TestJobSearch(t *testing.T) {
	assert := assert.New(t)
	d := newTestDrive(t, testROM(0xC000))

	queueJob(d, 0, JobSearch, 31, 5)
	dispatch(d)

	mem := d.Memory()
	assert.Equal(uint8(31), mem[regHeaderTrack])
	assert.Equal(uint8(17), mem[regSectorCount], "tracks 31-35 carry 17 sectors")
	assert.Equal(uint8(5), mem[regFoundSector])
	assert.Equal(uint8(StatusOK), mem[0])
}

func TestJobExecuteUnimplemented(t *testing.T) {
	for _, cmd := range []uint8{JobExecute, JobExecuteStartup} {
		d := newTestDrive(t, testROM(0xC000))
		queueJob(d, 0, cmd, 18, 0)
		assert.Panics(t, func() { dispatch(d) })
	}
}

func TestMultipleSlots(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	disk := NewRAMDisk()
	d := NewDrive(disk)
	require.NoError(d.LoadROM(testROM(0xC000)))

	queueJob(d, 0, JobRead, 18, 0)
	queueJob(d, 4, JobRead, 1, 2)
	dispatch(d)

	mem := d.Memory()
	assert.Equal(uint8(StatusOK), mem[0])
	assert.Equal(uint8(StatusOK), mem[4])
	assert.Zero(mem[1], "empty slots untouched")
	assert.Equal(uint8(4), mem[regCurrentSlot], "last serviced slot")
}

func TestFirmwareModeExecutesDisplacedOpcode(t *testing.T) {
	assert := assert.New(t)
	d := newTestDrive(t, testROM(0xC000))
	d.SetDiskControllerEmulation(true)

	queueJob(d, 0, JobRead, 18, 0)
	d.CPU.SP = 0x80
	dispatch(d)

	// The displaced TSX runs instead of the native dispatcher.
	assert.Equal(uint8(0x80), d.CPU.X)
	assert.Equal(uint8(JobRead), d.Memory()[0], "queue untouched in firmware mode")
	assert.NotEqual(uint16(jobReturnPC), d.CPU.PC)
}

func TestSectorsPerTrackTable(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(21, SectorsPerTrack[1])
	assert.Equal(21, SectorsPerTrack[17])
	assert.Equal(19, SectorsPerTrack[18])
	assert.Equal(19, SectorsPerTrack[24])
	assert.Equal(18, SectorsPerTrack[25])
	assert.Equal(18, SectorsPerTrack[30])
	assert.Equal(17, SectorsPerTrack[31])
	assert.Equal(17, SectorsPerTrack[35])

	total := 0
	for _, s := range SectorsPerTrack {
		total += s
	}
	assert.Equal(683, total, "standard 35-track disk block count")
}
