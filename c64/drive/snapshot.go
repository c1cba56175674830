package drive

import (
	"fmt"

	"github.com/newhook/c64/c64/snapshot"
	"github.com/newhook/c64/cpu"
)

// Save writes the drive state: the base CPU state first, then the
// interrupt-source tag lists, then RAM and the chip states. The ROM is
// not written; it is reloaded from the resource on restore.
func (d *Drive) Save(w *snapshot.Writer) error {
	c := d.CPU
	w.WriteInt(int(c.A))
	w.WriteInt(int(c.X))
	w.WriteInt(int(c.Y))
	w.WriteInt(int(c.PC))
	w.WriteInt(int(c.SP))
	w.WriteInt(int(c.P))
	w.WriteUint64(c.Cycles)

	// Interrupt wiring by identity tag. Counts precede the tags.
	irqs := c.IRQSources()
	w.WriteInt(len(irqs))
	for _, s := range irqs {
		w.WriteString(s.Tag())
	}
	nmis := c.NMISources()
	w.WriteInt(len(nmis))
	for _, s := range nmis {
		w.WriteString(s.Tag())
	}

	w.WriteBytes(d.bus.mem[:RAMSize])
	w.WriteBool(d.emulateDiskController)
	w.WriteBool(d.active)
	w.WriteBool(d.stopped)
	w.WriteUint64(d.lastUpdate)

	if err := d.via0.Save(w); err != nil {
		return err
	}
	if err := d.via1.Save(w); err != nil {
		return err
	}
	return w.Err()
}

// Restore reads back the state written by Save, reconnecting each
// interrupt tag to the matching VIA instance. An unknown tag is fatal.
func (d *Drive) Restore(r *snapshot.Reader) error {
	c := d.CPU
	c.A = uint8(r.ReadInt())
	c.X = uint8(r.ReadInt())
	c.Y = uint8(r.ReadInt())
	c.PC = uint16(r.ReadInt())
	c.SP = uint8(r.ReadInt())
	c.P = uint8(r.ReadInt())
	c.Cycles = r.ReadUint64()

	c.ClearInterruptSources()
	for i, n := 0, r.ReadInt(); i < n && r.Err() == nil; i++ {
		s, err := d.sourceForTag(r.ReadString())
		if err != nil {
			r.Fail(err)
			break
		}
		c.AddIRQSource(s)
	}
	for i, n := 0, r.ReadInt(); i < n && r.Err() == nil; i++ {
		s, err := d.sourceForTag(r.ReadString())
		if err != nil {
			r.Fail(err)
			break
		}
		c.AddNMISource(s)
	}

	ram := r.ReadBytes()
	if r.Err() == nil {
		copy(d.bus.mem[:RAMSize], ram)
	}
	d.emulateDiskController = r.ReadBool()
	d.active = r.ReadBool()
	d.stopped = r.ReadBool()
	d.lastUpdate = r.ReadUint64()

	if err := d.via0.Restore(r); err != nil {
		return err
	}
	if err := d.via1.Restore(r); err != nil {
		return err
	}
	return r.Err()
}

func (d *Drive) sourceForTag(tag string) (cpu.InterruptSource, error) {
	switch tag {
	case TagBusVIA:
		return d.via0, nil
	case TagDiskVIA:
		return &d.via1.VIA, nil
	}
	return nil, fmt.Errorf("unknown interrupt source tag %q", tag)
}
