package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/newhook/c64/c64/c64"
	"github.com/newhook/c64/c64/drive"
)

// floppyROMName is the drive firmware resource, a raw 16K binary.
const floppyROMName = "floppy.c64"

func main() {
	romDir := flag.String("roms", "/roms", "Directory holding the ROM images")
	withDrive := flag.Bool("drive", true, "Attach a 1541 drive")
	flag.Parse()

	computer := c64.NewC64()
	if err := computer.InitVideo(); err != nil {
		log.Fatal(err)
	}
	defer computer.Cleanup()

	do := func() error {
		mem := computer.Memory

		// Load ROMs
		basicROM, err := os.ReadFile(filepath.Join(*romDir, "basic-901226-01.bin"))
		if err != nil {
			return err
		}
		kernalROM, err := os.ReadFile(filepath.Join(*romDir, "kernal-901227-03.bin"))
		if err != nil {
			return err
		}
		charROM, err := os.ReadFile(filepath.Join(*romDir, "chargen-901225-01.bin"))
		if err != nil {
			return err
		}
		if err := mem.LoadROM(basicROM, "basic"); err != nil {
			return err
		}
		if err := mem.LoadROM(kernalROM, "kernal"); err != nil {
			return err
		}
		if err := mem.LoadROM(charROM, "char"); err != nil {
			return err
		}

		mem.Map()

		if *withDrive {
			floppyROM, err := os.ReadFile(filepath.Join(*romDir, floppyROMName))
			if err != nil {
				return err
			}
			d := drive.NewDrive(drive.NewRAMDisk())
			if err := d.LoadROM(floppyROM); err != nil {
				return err
			}
			computer.AttachDrive(d)
		}

		computer.Reset()

		// Main emulation loop
		for computer.IsRunning() {
			computer.Step()
		}
		return nil
	}
	if err := do(); err != nil {
		log.Fatal("error", err)
	}
}
