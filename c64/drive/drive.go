package drive

import (
	"fmt"
	"log"

	"github.com/newhook/c64/c64/via"
	"github.com/newhook/c64/cpu"
)

// Snapshot identity tags for the drive's interrupt sources.
const (
	TagBusVIA  = "via.bus"
	TagDiskVIA = "via.disk"
)

// Extended opcodes installed over the firmware. Each shadows a known
// instruction at a fixed program counter and short-circuits a slow
// firmware path with native code.
const (
	opJobQueue    = 0x100 // 0xF2B0: job queue scan in the IRQ handler
	opSkipSelfTest = 0x101 // 0xEAC9: ROM checksum loop
	opShutdown    = 0x102 // 0xEBFF: idle loop, stop the drive
	opLoadFile    = 0x103 // 0xD7B4: filename lookup
	opNextSync    = 0x104 // 0xF58C: wait for sync mark
	opWriteSync   = 0x105 // 0xF5A3: write sync mark
	opWriteSync2  = 0x106 // 0xFCB1/0xFCDC: format sync writes
)

// Drive is a 1541 floppy drive: its own 6502, two VIAs and the disk
// controller, attached to a block-level disk backend.
type Drive struct {
	CPU  *cpu.CPU
	via0 *via.VIA     // bus controller at 0x1800
	via1 *via.DiskVIA // disk controller at 0x1C00

	bus     *bus
	backend DiskBackend

	// emulateDiskController selects between running the firmware's own
	// controller loop and the native job dispatcher at trap 0x100.
	emulateDiskController bool

	active  bool // a job has been dispatched since the last reset
	stopped bool

	lastUpdate uint64
}

func NewDrive(backend DiskBackend) *Drive {
	via0 := via.NewVIA(TagBusVIA)
	via1 := via.NewDiskVIA(TagDiskVIA)
	b := newBus(via0, via1)

	d := &Drive{
		via0:    via0,
		via1:    via1,
		bus:     b,
		backend: backend,
	}
	d.CPU = cpu.NewCPU(b)
	d.CPU.Extended = d
	d.CPU.AddIRQSource(via0)
	d.CPU.AddIRQSource(&via1.VIA)
	return d
}

// LoadROM installs the 16K firmware image and patches the trap cells.
func (d *Drive) LoadROM(data []byte) error {
	if len(data) != ROMSize {
		return fmt.Errorf("floppy ROM must be %d bytes, got %d", ROMSize, len(data))
	}
	copy(d.bus.mem[RAMSize:], data)
	d.installTraps()
	d.CPU.Reset()
	return nil
}

func (d *Drive) installTraps() {
	traps := []struct {
		address uint16
		opcode  uint16
		name    string
	}{
		{0xF2B0, opJobQueue, "JOBQ"},
		{0xEAC9, opSkipSelfTest, "ROMOK"},
		{0xEBFF, opShutdown, "IDLE"},
		{0xD7B4, opLoadFile, "FNAME"},
		{0xF58C, opNextSync, "SYNC"},
		{0xF5A3, opWriteSync, "WSYNC"},
		{0xFCB1, opWriteSync2, "FSYNC"},
		{0xFCDC, opWriteSync2, "FSYNC"},
	}
	for _, t := range traps {
		d.CPU.InstallTrap(t.address, t.opcode)
		cpu.RegisterExtended(t.opcode, t.name)
	}
}

// EmulateExtendedInstruction dispatches the drive's synthetic opcodes.
// The PC has already moved past the trap cell.
func (d *Drive) EmulateExtendedInstruction(opcode uint16) uint8 {
	switch opcode {
	case opJobQueue:
		if !d.emulateDiskController {
			return d.runJobQueue()
		}
		// Fall through to the displaced TSX and let the firmware scan
		// the queue itself.
		return d.CPU.Execute(0xBA)

	case opSkipSelfTest:
		d.CPU.PC = 0xEAEA
		return 2

	case opShutdown:
		cycles := d.CPU.Execute(0x58) // displaced CLI
		d.Stop()
		return cycles

	case opLoadFile:
		cycles := d.CPU.Execute(0xA5) // displaced LDA zp
		log.Printf("drive: open %q", d.filename())
		return cycles

	case opNextSync:
		d.via1.ProceedToNextSync()
		d.CPU.PC = 0xF594
		return 2

	case opWriteSync:
		d.via1.WriteSync()
		d.CPU.PC = 0xF5B1
		return 2

	case opWriteSync2:
		d.via1.WriteSync()
		d.CPU.PC += 11
		return 2
	}
	panic(fmt.Sprintf("Unknown extended opcode: 0x%03X", opcode))
}

// filename reads the null-terminated name the firmware parsed into
// 0x200-0x20F.
func (d *Drive) filename() string {
	name := make([]byte, 0, 16)
	for addr := 0x200; addr < 0x210; addr++ {
		ch := d.bus.mem[addr]
		if ch == 0 {
			break
		}
		name = append(name, ch)
	}
	return string(name)
}

// SetDiskControllerEmulation selects firmware (true) or native (false)
// handling of the job queue.
func (d *Drive) SetDiskControllerEmulation(enabled bool) {
	d.emulateDiskController = enabled
}

// Stop halts the drive until Start; the tick loop skips a stopped
// drive.
func (d *Drive) Stop() {
	d.stopped = true
}

// Start resumes a stopped drive.
func (d *Drive) Start() {
	d.stopped = false
}

// Stopped reports whether the drive is halted.
func (d *Drive) Stopped() bool {
	return d.stopped
}

// Active reports whether any job has been dispatched.
func (d *Drive) Active() bool {
	return d.active
}

// VIA0 is the bus-controller VIA.
func (d *Drive) VIA0() *via.VIA { return d.via0 }

// VIA1 is the disk-controller VIA.
func (d *Drive) VIA1() *via.DiskVIA { return d.via1 }

// Step executes one drive CPU instruction. The BYTE READY line is
// folded into the overflow flag first, so BVC/BVS loops in the
// transfer routines see the hardware SO-pin wiring.
func (d *Drive) Step() uint8 {
	if d.via1.IsByteReady() {
		d.CPU.P |= cpu.FlagV
	}
	cycles := d.CPU.Step()

	total := d.CPU.Cycles
	if d.via0.GetNextUpdate() <= total {
		d.via0.Update(total)
	}
	if d.via1.GetNextUpdate() <= total {
		d.via1.Update(total)
	}
	return cycles
}

// Update runs the drive until it has consumed the given absolute cycle
// count, instruction at a time. A stopped drive just tracks time.
func (d *Drive) Update(currentCycles uint64) {
	if d.stopped {
		d.lastUpdate = currentCycles
		return
	}
	for d.CPU.Cycles < currentCycles {
		d.Step()
	}
	d.lastUpdate = currentCycles
}

// ProjectPC reports the program counter for external observers. ROM
// addresses are projected into the backing array, so the reported
// value indexes it directly. The projection is idempotent: projected
// values fall below the ROM base.
func (d *Drive) ProjectPC(pc uint16) int {
	if pc >= ROMBase {
		return int(pc) + romOffset
	}
	return int(pc)
}

// Memory exposes the contiguous RAM+ROM backing array.
func (d *Drive) Memory() []uint8 {
	return d.bus.mem
}

// Bus exposes the drive's address decode, for the monitor.
func (d *Drive) Bus() cpu.MemoryBus {
	return d.bus
}

// Reset clears RAM, resets the chips and restarts the CPU at the
// reset vector.
func (d *Drive) Reset() {
	for i := 0; i < RAMSize; i++ {
		d.bus.mem[i] = 0
	}
	d.via0.Reset()
	d.via1.Reset()
	d.active = false
	d.stopped = false
	d.CPU.Reset()
}
