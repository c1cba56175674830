package c64

import (
	"fmt"
	"unsafe"

	"github.com/newhook/c64/c64/drive"
	"github.com/newhook/c64/c64/iochip"
	"github.com/newhook/c64/c64/memory"
	"github.com/newhook/c64/c64/snapshot"
	"github.com/newhook/c64/c64/vic"
	"github.com/newhook/c64/cpu"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	// Clock frequencies
	PAL_CLOCK_HZ  = 985248  // PAL C64 clock frequency
	NTSC_CLOCK_HZ = 1022727 // NTSC C64 clock frequency

	// Video timing constants (PAL)
	CYCLES_PER_LINE  = 63
	LINES_PER_FRAME  = 312
	CYCLES_PER_FRAME = CYCLES_PER_LINE * LINES_PER_FRAME
)

// cpuBus is the C64 CPU's address decode. The VIC register window at
// 0xD000-0xD3FF routes to the chip, everything else goes through the
// banked memory manager. The chip is updated to the CPU's cycle count
// before any register access, so reads reflect current state.
type cpuBus struct {
	c *C64
}

func (b *cpuBus) Read(address uint16) uint8 {
	if address&0xFC00 == 0xD000 {
		b.c.VIC.Update(b.c.CPU.Cycles)
		return b.c.VIC.ReadRegister(uint8(address & 0x3F))
	}
	return b.c.Memory.Read(address)
}

func (b *cpuBus) Write(address uint16, value uint8) {
	if address&0xFC00 == 0xD000 {
		b.c.VIC.Update(b.c.CPU.Cycles)
		b.c.VIC.WriteRegister(uint8(address&0x3F), value)
		return
	}
	b.c.Memory.Write(address, value)
}

type C64 struct {
	CPU    *cpu.CPU
	Memory *memory.Manager
	VIC    *vic.VIC
	Drive  *drive.Drive

	chips []iochip.IOChip

	// Rendering.
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	running  bool
}

// NewC64 builds a headless machine: CPU, memory and VIC wired through
// the tick loop. Call InitVideo before Run to get a window.
func NewC64() *C64 {
	mem := memory.NewManager()

	c := &C64{
		Memory:  mem,
		running: true,
	}
	c.VIC = vic.NewVIC(mem.VICView())
	c.CPU = cpu.NewCPU(&cpuBus{c: c})
	c.CPU.AddIRQSource(c.VIC)
	c.chips = append(c.chips, c.VIC)
	return c
}

// AttachDrive connects a 1541 to the machine. The drive runs its own
// CPU inside the master tick loop.
func (c *C64) AttachDrive(d *drive.Drive) {
	c.Drive = d
}

// InitVideo opens the SDL window, renderer and streaming texture.
func (c *C64) InitVideo() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}

	window, err := sdl.CreateWindow("C64 Emulator",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		640, 400, // Double the original resolution for better visibility
		sdl.WINDOW_SHOWN)
	if err != nil {
		return err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return err
	}

	// Create texture that matches C64's native resolution
	texture, err := renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_ABGR8888),
		sdl.TEXTUREACCESS_STREAMING,
		320, 200)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return err
	}

	c.window = window
	c.renderer = renderer
	c.texture = texture
	c.pixels = make([]byte, 320*200*4)
	return nil
}

// Step executes one CPU instruction and services every chip whose
// update deadline has passed. The drive, when attached, catches its
// own CPU up to the same cycle count.
func (c *C64) Step() {
	c.CPU.Step()
	total := c.CPU.Cycles

	for _, chip := range c.chips {
		if chip.GetNextUpdate() <= total {
			chip.Update(total)
		}
	}

	if c.Drive != nil {
		c.Drive.Update(total)
	}

	if c.VIC.FrameReady() {
		if err := c.RenderFrame(c.VIC.GetDisplayBuffer()); err != nil {
			fmt.Println(err)
		}
	}
}

func (c *C64) IsRunning() bool {
	return c.running
}

func (c *C64) Stop() {
	c.running = false
}

// Reset returns every component to power-on state.
func (c *C64) Reset() {
	c.VIC.Reset()
	if c.Drive != nil {
		c.Drive.Reset()
	}
	c.CPU.Reset()
}

// C64Colors represents the standard C64 palette
var C64Colors = []uint32{
	0x000000, // Black
	0xFFFFFF, // White
	0x880000, // Red
	0xAAFFEE, // Cyan
	0xCC44CC, // Purple
	0x00CC55, // Green
	0x0000AA, // Blue
	0xEEEE77, // Yellow
	0xDD8855, // Orange
	0x664400, // Brown
	0xFF7777, // Light red
	0x333333, // Dark grey
	0x777777, // Medium grey
	0xAAFF66, // Light green
	0x0088FF, // Light blue
	0xBBBBBB, // Light grey
}

func (c *C64) RenderFrame(buffer []uint8) error {
	if c.renderer == nil {
		return nil
	}

	// Handle SDL events
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event.(type) {
		case *sdl.QuitEvent:
			c.running = false
			return nil
		}
	}

	// Convert the VIC output buffer to RGBA pixels
	for i := 0; i < len(buffer); i++ {
		colorIndex := buffer[i] & 0x0F // Get color index (0-15)
		color := C64Colors[colorIndex]

		// Convert the 0xRRGGBB color to RGBA components
		pixelOffset := i * 4
		c.pixels[pixelOffset+0] = byte((color >> 16) & 0xFF) // R
		c.pixels[pixelOffset+1] = byte((color >> 8) & 0xFF)  // G
		c.pixels[pixelOffset+2] = byte(color & 0xFF)         // B
		c.pixels[pixelOffset+3] = 0xFF                       // A (full opacity)
	}

	// Update texture with new pixel data
	if err := c.texture.Update(nil, unsafe.Pointer(&c.pixels[0]), 320*4); err != nil {
		return err
	}

	if err := c.renderer.Clear(); err != nil {
		return err
	}

	// Copy texture to renderer, scaling it to window size
	if err := c.renderer.Copy(c.texture, nil, nil); err != nil {
		return err
	}

	c.renderer.Present()

	return nil
}

// Save serialises the whole machine behind a magic+version header.
func (c *C64) Save(w *snapshot.Writer) error {
	w.WriteHeader()

	w.WriteInt(int(c.CPU.A))
	w.WriteInt(int(c.CPU.X))
	w.WriteInt(int(c.CPU.Y))
	w.WriteInt(int(c.CPU.PC))
	w.WriteInt(int(c.CPU.SP))
	w.WriteInt(int(c.CPU.P))
	w.WriteUint64(c.CPU.Cycles)

	if err := c.Memory.Save(w); err != nil {
		return err
	}
	if err := c.VIC.Save(w); err != nil {
		return err
	}

	w.WriteBool(c.Drive != nil)
	if c.Drive != nil {
		if err := c.Drive.Save(w); err != nil {
			return err
		}
	}
	return w.Err()
}

// Restore reads back the state written by Save. The machine must be
// constructed (and the drive attached) before restoring.
func (c *C64) Restore(r *snapshot.Reader) error {
	r.ReadHeader()

	c.CPU.A = uint8(r.ReadInt())
	c.CPU.X = uint8(r.ReadInt())
	c.CPU.Y = uint8(r.ReadInt())
	c.CPU.PC = uint16(r.ReadInt())
	c.CPU.SP = uint8(r.ReadInt())
	c.CPU.P = uint8(r.ReadInt())
	c.CPU.Cycles = r.ReadUint64()

	if err := c.Memory.Restore(r); err != nil {
		return err
	}
	if err := c.VIC.Restore(r); err != nil {
		return err
	}

	hasDrive := r.ReadBool()
	if hasDrive {
		if c.Drive == nil {
			r.Fail(fmt.Errorf("snapshot carries a drive but none is attached"))
			return r.Err()
		}
		if err := c.Drive.Restore(r); err != nil {
			return err
		}
	}
	return r.Err()
}

func (c *C64) Cleanup() {
	if c.texture != nil {
		c.texture.Destroy()
	}
	if c.renderer != nil {
		c.renderer.Destroy()
	}
	if c.window != nil {
		c.window.Destroy()
	}
	if c.window != nil || c.renderer != nil {
		sdl.Quit()
	}
}
