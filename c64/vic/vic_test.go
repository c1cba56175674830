package vic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testMemory [65536]uint8

func (m *testMemory) Read(address uint16) uint8 {
	return m[address]
}

func TestSpriteRegisterMapping(t *testing.T) {
	assert := assert.New(t)
	v := NewVIC(&testMemory{})

	v.WriteRegister(RegSprite3X, 0x42)
	v.WriteRegister(RegSprite3Y, 0x21)
	assert.Equal(0x42, v.Sprite(3).X())
	assert.Equal(0x21, v.Sprite(3).Y())
	assert.Equal(uint8(0x42), v.ReadRegister(RegSprite3X))
	assert.Equal(uint8(0x21), v.ReadRegister(RegSprite3Y))

	// MSB register extends X to nine bits.
	v.WriteRegister(RegSpriteXMSB, 1<<3)
	assert.Equal(0x142, v.Sprite(3).X())
	assert.Equal(uint8(1<<3), v.ReadRegister(RegSpriteXMSB))

	v.WriteRegister(RegSpriteEnable, 0xA5)
	assert.Equal(uint8(0xA5), v.ReadRegister(RegSpriteEnable))
	assert.True(v.Sprite(0).Enabled())
	assert.False(v.Sprite(1).Enabled())

	v.WriteRegister(RegSpriteMulticolor, 0x01)
	assert.True(v.Sprite(0).Multicolor())

	v.WriteRegister(RegSpriteXExpand, 0x02)
	assert.True(v.Sprite(1).ExpandX())
	v.WriteRegister(RegSpriteYExpand, 0x04)
	assert.True(v.Sprite(2).ExpandY())
	v.WriteRegister(RegSpritePriority, 0x08)
	assert.True(v.Sprite(3).Priority())
}

func TestSpriteColorRegisters(t *testing.T) {
	assert := assert.New(t)
	v := NewVIC(&testMemory{})

	v.WriteRegister(RegSprite0Color, 7)
	assert.Equal(uint8(7), v.Sprite(0).Color(2))
	assert.Equal(uint8(7), v.ReadRegister(RegSprite0Color))

	v.WriteRegister(RegSpriteMulti0, 3)
	v.WriteRegister(RegSpriteMulti1, 9)
	for i := 0; i < NUM_SPRITES; i++ {
		assert.Equal(uint8(3), v.Sprite(i).Color(1), "sprite %d multi0", i)
		assert.Equal(uint8(9), v.Sprite(i).Color(3), "sprite %d multi1", i)
	}
}

func TestRasterRegister(t *testing.T) {
	assert := assert.New(t)
	v := NewVIC(&testMemory{})

	// Advance one full line.
	v.Update(CYCLES_PER_LINE)
	assert.Equal(uint8(1), v.ReadRegister(RegRaster))

	// The raster IRQ line combines the register with the $D011 MSB.
	v.WriteRegister(RegScreenControl1, ScreenControl1Raster8)
	v.WriteRegister(RegRaster, 0x2A)
	assert.Equal(uint16(0x12A), v.rasterIRQ)
}

func TestRasterInterrupt(t *testing.T) {
	assert := assert.New(t)
	v := NewVIC(&testMemory{})

	v.WriteRegister(RegRaster, 2)
	v.WriteRegister(RegInterruptEnable, InterruptRaster)

	v.Update(CYCLES_PER_LINE * 2)
	assert.True(v.Pending(), "raster interrupt raised at the target line")
	assert.NotZero(v.ReadRegister(RegInterrupt) & InterruptRaster)

	// Writing a one clears the latch and the line.
	v.WriteRegister(RegInterrupt, InterruptRaster)
	assert.False(v.Pending())
}

func TestGetNextUpdateIsLineBoundary(t *testing.T) {
	assert := assert.New(t)
	v := NewVIC(&testMemory{})

	assert.Equal(uint64(CYCLES_PER_LINE), v.GetNextUpdate())
	v.Update(10)
	assert.Equal(uint64(CYCLES_PER_LINE), v.GetNextUpdate())
	v.Update(CYCLES_PER_LINE)
	assert.Equal(uint64(2*CYCLES_PER_LINE), v.GetNextUpdate())
}

func TestFrameReady(t *testing.T) {
	assert := assert.New(t)
	v := NewVIC(&testMemory{})

	v.Update(CYCLES_PER_LINE * TOTAL_LINES)
	assert.True(v.FrameReady())
	assert.False(v.FrameReady(), "signal is consumed on read")
}

func TestSpriteRendersIntoDisplayBuffer(t *testing.T) {
	assert := assert.New(t)
	mem := &testMemory{}

	// Sprite 0: block 13, solid first line.
	mem[0x0400+SPRITE_POINTER_OFFSET] = 13
	base := 13 * 64
	mem[base] = 0xFF
	mem[base+1] = 0xFF
	mem[base+2] = 0xFF

	v := NewVIC(mem)
	v.WriteRegister(RegSpriteEnable, 0x01)
	v.WriteRegister(RegSprite0Color, 5)
	v.WriteRegister(RegSprite0X, spriteXOffset+10)
	v.WriteRegister(RegSprite0Y, FIRST_TEXT_LINE+4)
	v.WriteRegister(RegSpritePriority, 0x01)

	// Run the beam past the sprite's line.
	v.Update(uint64(CYCLES_PER_LINE) * uint64(FIRST_TEXT_LINE+6))

	row := 4
	buf := v.GetDisplayBuffer()
	for px := 0; px < SPRITE_WIDTH; px++ {
		assert.Equal(uint8(5), buf[row*VISIBLE_WIDTH+10+px], "pixel %d", px)
	}
	assert.NotEqual(uint8(5), buf[row*VISIBLE_WIDTH+10+SPRITE_WIDTH])
}
