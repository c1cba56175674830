package via

import "github.com/newhook/c64/c64/snapshot"

// Save writes the 6522 register file and timer state.
func (v *VIA) Save(w *snapshot.Writer) error {
	w.WriteInt(int(v.registers.portA))
	w.WriteInt(int(v.registers.portB))
	w.WriteInt(int(v.registers.ddrA))
	w.WriteInt(int(v.registers.ddrB))
	w.WriteInt(int(v.registers.timer1Latch))
	w.WriteInt(int(v.registers.timer1))
	w.WriteInt(int(v.registers.timer2Latch))
	w.WriteInt(int(v.registers.timer2))
	w.WriteInt(int(v.registers.sr))
	w.WriteInt(int(v.registers.acr))
	w.WriteInt(int(v.registers.pcr))
	w.WriteInt(int(v.registers.ifr))
	w.WriteInt(int(v.registers.ier))
	w.WriteBool(v.timer1Running)
	w.WriteBool(v.timer2Running)
	w.WriteUint64(v.lastUpdate)
	return w.Err()
}

// Restore reads back the state written by Save.
func (v *VIA) Restore(r *snapshot.Reader) error {
	v.registers.portA = uint8(r.ReadInt())
	v.registers.portB = uint8(r.ReadInt())
	v.registers.ddrA = uint8(r.ReadInt())
	v.registers.ddrB = uint8(r.ReadInt())
	v.registers.timer1Latch = uint16(r.ReadInt())
	v.registers.timer1 = uint16(r.ReadInt())
	v.registers.timer2Latch = uint16(r.ReadInt())
	v.registers.timer2 = uint16(r.ReadInt())
	v.registers.sr = uint8(r.ReadInt())
	v.registers.acr = uint8(r.ReadInt())
	v.registers.pcr = uint8(r.ReadInt())
	v.registers.ifr = uint8(r.ReadInt())
	v.registers.ier = uint8(r.ReadInt())
	v.timer1Running = r.ReadBool()
	v.timer2Running = r.ReadBool()
	v.lastUpdate = r.ReadUint64()
	return r.Err()
}

// Save writes the VIA state plus the drive mechanics.
func (d *DiskVIA) Save(w *snapshot.Writer) error {
	if err := d.VIA.Save(w); err != nil {
		return err
	}
	w.WriteBool(d.byteReady)
	w.WriteInt(int(d.byteCounter))
	w.WriteBool(d.motorOn)
	w.WriteBool(d.writeProtect)
	w.WriteInt(int(d.halfTrack))
	w.WriteBool(d.syncFound)
	return w.Err()
}

// Restore reads back the state written by Save.
func (d *DiskVIA) Restore(r *snapshot.Reader) error {
	if err := d.VIA.Restore(r); err != nil {
		return err
	}
	d.byteReady = r.ReadBool()
	d.byteCounter = uint8(r.ReadInt())
	d.motorOn = r.ReadBool()
	d.writeProtect = r.ReadBool()
	d.halfTrack = uint8(r.ReadInt())
	d.syncFound = r.ReadBool()
	return r.Err()
}
