package cpu

// CPUAndMemory couples a CPU with a bare 64K RAM so instruction tests
// can poke memory directly.
type CPUAndMemory struct {
	*CPU
	mem *RAM
}

func NewCPUAndMemory() *CPUAndMemory {
	mem := &RAM{}
	return &CPUAndMemory{NewCPU(mem), mem}
}

func (c *CPUAndMemory) ram() *RAM { return c.mem }
