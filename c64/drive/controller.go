package drive

import (
	"errors"
	"fmt"
)

// Firmware job queue layout in drive RAM. Five slots: command bytes at
// 0x00-0x04 (bit 7 set = job pending), track/sector pairs from 0x06,
// one 256-byte buffer per slot from 0x0300.
const (
	jobSlots      = 5
	jobTrackBase  = 0x06
	jobBufferBase = 0x0300

	regCurrentSlot = 0x3F // slot being serviced
	regHeaderTrack = 0x22 // track under the head
	regSectorCount = 0x43 // sectors on the current track
	regLastSector  = 0x4C // sector of the last transfer
	regFoundSector = 0x4D // sector located by SEARCH

	// jobReturnPC re-enters the firmware's IRQ handler after the
	// native dispatcher has drained the queue.
	jobReturnPC = 0xFAC6
)

// Job commands, high nibble of the slot's command byte.
const (
	JobRead           = 0x80
	JobWrite          = 0x90
	JobVerify         = 0xA0
	JobSearch         = 0xB0
	JobBump           = 0xC0
	JobExecute        = 0xD0
	JobExecuteStartup = 0xE0
)

// Job status codes written back into the command byte.
const (
	StatusOK           = 0x01
	StatusNotFound     = 0x04
	StatusWriteProtect = 0x08
	StatusNoDisk       = 0x0F
)

// runJobQueue is the native replacement for the firmware's disk
// controller IRQ routine: it scans the five job slots and services
// pending jobs against the disk backend in one shot.
func (d *Drive) runJobQueue() uint8 {
	// Reading the timer register acknowledges the controller IRQ.
	d.via1.ReadRegister(0x04)

	mem := d.bus.mem
	for m := 0; m < jobSlots; m++ {
		cmd := mem[m] & 0xF0
		if cmd == 0 {
			continue
		}
		track := int(mem[jobTrackBase+2*m])
		sector := int(mem[jobTrackBase+1+2*m])
		bufferAdr := jobBufferBase + 0x100*m

		d.active = true
		mem[regCurrentSlot] = uint8(m)

		switch cmd {
		case JobRead:
			mem[m] = d.jobStatus(d.readJob(track, sector, bufferAdr))
			mem[regLastSector] = uint8(sector)

		case JobWrite:
			mem[m] = d.jobStatus(d.writeJob(track, sector, bufferAdr))
			mem[regLastSector] = uint8(sector)

		case JobVerify, JobBump:
			mem[m] = StatusOK

		case JobSearch:
			mem[regHeaderTrack] = uint8(track)
			if track >= 1 && track < len(SectorsPerTrack) {
				mem[regSectorCount] = uint8(SectorsPerTrack[track])
			} else {
				mem[regSectorCount] = 0
			}
			mem[regFoundSector] = uint8(sector)
			mem[m] = StatusOK

		case JobExecute, JobExecuteStartup:
			panic(fmt.Sprintf("Unimplemented job command 0x%02X in slot %d", cmd, m))
		}
	}

	d.CPU.PC = jobReturnPC
	return 2
}

func (d *Drive) readJob(track, sector, bufferAdr int) error {
	if err := d.backend.GotoBlock(track, sector); err != nil {
		return err
	}
	block, err := d.backend.ReadBlock()
	if err != nil {
		return err
	}
	copy(d.bus.mem[bufferAdr:bufferAdr+BlockSize], block)
	return nil
}

func (d *Drive) writeJob(track, sector, bufferAdr int) error {
	if err := d.backend.GotoBlock(track, sector); err != nil {
		return err
	}
	block := make([]byte, BlockSize)
	copy(block, d.bus.mem[bufferAdr:bufferAdr+BlockSize])
	return d.backend.WriteBlock(block)
}

// jobStatus maps a backend error onto the firmware status byte.
// Anything the firmware has no code for is fatal.
func (d *Drive) jobStatus(err error) uint8 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrWriteProtected):
		return StatusWriteProtect
	case errors.Is(err, ErrNoDisk):
		return StatusNoDisk
	}
	panic(fmt.Sprintf("disk backend: %v", err))
}
