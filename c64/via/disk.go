package via

// 1541 disk-controller port B wiring (VIA at 0x1C00).
const (
	DiskStepperMask uint8 = 0x03 // PB0-1: head stepper phase
	DiskMotorOn     uint8 = 0x04 // PB2: spindle motor
	DiskLED         uint8 = 0x08 // PB3: drive LED
	DiskWriteProt   uint8 = 0x10 // PB4: write protect sense (input)
	DiskDensityMask uint8 = 0x60 // PB5-6: bit rate select
	DiskSyncFound   uint8 = 0x80 // PB7: sync detected (input, active low)
)

// CyclesPerByte is the cadence of the BYTE READY line: one byte is
// clocked off the GCR stream roughly every 26 cycles at 300 rpm.
const CyclesPerByte = 26

// DiskVIA is the disk-controller VIA. On top of the 6522 register set
// it models the drive mechanics the firmware talks to through port B
// and the BYTE READY line wired to the CPU's SO pin.
type DiskVIA struct {
	VIA

	byteReady    bool
	byteCounter  uint8
	motorOn      bool
	writeProtect bool
	halfTrack    uint8
	syncFound    bool
}

func NewDiskVIA(tag string) *DiskVIA {
	d := &DiskVIA{VIA: *NewVIA(tag)}
	d.halfTrack = 2 // track 1
	d.OnTick = d.tick
	d.InputB = d.portBInput
	return d
}

// tick runs once per cycle while the VIA updates. With the motor on it
// raises BYTE READY at the media cadence.
func (d *DiskVIA) tick() {
	if !d.motorOn {
		return
	}
	d.byteCounter++
	if d.byteCounter >= CyclesPerByte {
		d.byteCounter = 0
		d.byteReady = true
	}
}

// IsByteReady reports the BYTE READY line. The drive CPU ORs it into
// the overflow flag before each instruction; reading the data port
// clears it.
func (d *DiskVIA) IsByteReady() bool {
	return d.byteReady
}

// ProceedToNextSync spins the media forward to the next sync mark.
func (d *DiskVIA) ProceedToNextSync() {
	d.byteReady = false
	d.byteCounter = 0
	d.syncFound = true
}

// WriteSync writes a sync mark at the current position.
func (d *DiskVIA) WriteSync() {
	d.byteReady = false
	d.byteCounter = 0
	d.syncFound = true
}

// HalfTrack reports the stepper position (2 = track 1).
func (d *DiskVIA) HalfTrack() uint8 { return d.halfTrack }

// SetWriteProtect drives the write-protect sense line.
func (d *DiskVIA) SetWriteProtect(on bool) { d.writeProtect = on }

func (d *DiskVIA) ReadRegister(reg uint8) uint8 {
	if reg&0xF == PRA || reg&0xF == PRA_NH {
		// Reading the data port consumes the pending byte.
		d.byteReady = false
	}
	return d.VIA.ReadRegister(reg)
}

func (d *DiskVIA) WriteRegister(reg uint8, val uint8) {
	var oldStepper uint8
	if reg&0xF == PRB {
		oldStepper = d.PortB() & DiskStepperMask
	}
	d.VIA.WriteRegister(reg, val)
	if reg&0xF == PRB {
		d.motorOn = val&DiskMotorOn != 0
		d.stepHead(oldStepper, val&DiskStepperMask)
	}
}

// stepHead moves the head one half track per stepper phase advance.
func (d *DiskVIA) stepHead(old, new uint8) {
	if old == new {
		return
	}
	if new == (old+1)&DiskStepperMask {
		if d.halfTrack < 70 {
			d.halfTrack++
		}
	} else if new == (old-1)&DiskStepperMask {
		if d.halfTrack > 2 {
			d.halfTrack--
		}
	}
}

func (d *DiskVIA) portBInput() uint8 {
	input := uint8(0xFF)
	if d.writeProtect {
		input &= ^DiskWriteProt
	}
	if d.syncFound {
		input &= ^DiskSyncFound
	}
	return input
}

func (d *DiskVIA) Reset() {
	d.VIA.Reset()
	d.byteReady = false
	d.byteCounter = 0
	d.motorOn = false
	d.syncFound = false
	d.halfTrack = 2
}
