package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/newhook/c64/cpu"
	"github.com/newhook/c64/dis/disassembler"
)

func main() {
	// Command line flags
	inputFile := flag.String("i", "", "Input binary file")
	startAddr := flag.String("a", "", "Start address")
	flag.Parse()

	addrStr := *startAddr
	if strings.HasPrefix(addrStr, "$") {
		addrStr = "0x" + addrStr[1:]
	}
	startAddrInt, err := strconv.ParseUint(addrStr, 0, 16)
	if err != nil {
		fmt.Printf("Error parsing start address: %v\n", err)
		return
	}

	mem := &cpu.RAM{}
	length, err := LoadBinary(mem, *inputFile, int(startAddrInt))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(disassembler.DisassembleMemory(mem, int(startAddrInt), length))
}

func LoadBinary(mem *cpu.RAM, filename string, startAddr int) (int, error) {
	// Read the binary file
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read binary file: %v", err)
	}

	// Check if the binary will fit in memory
	if startAddr+len(data) > len(mem) {
		return 0, fmt.Errorf("binary file too large for available memory")
	}

	for i, b := range data {
		mem[uint16(startAddr)+uint16(i)] = b
	}

	return len(data), nil
}
