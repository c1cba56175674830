package vic

import "github.com/newhook/c64/c64/snapshot"

// Memory is the sprite engine's read-only view of system memory for
// DMA fetches. The VIC and all eight sprites share one backing array;
// the tick loop serialises access so no locking is needed.
type Memory interface {
	Read(address uint16) uint8
}

// spriteDataLen is the size of one sprite's data block: 21 lines of 3
// bytes. nextByte at or past this value means DMA for the frame is done.
const spriteDataLen = 63

// Sprite is one of the VIC-II's eight sprite state machines: DMA read
// state, expansion state and the pixel serializer for the current line.
type Sprite struct {
	mem Memory

	x, y       int
	enabled    bool
	multicolor bool
	expandX    bool
	expandY    bool
	priority   bool
	colors     [4]uint8

	// DMA state for the current raster band.
	painting    bool
	pointer     int
	lastPointer int
	lineData    uint32 // three fetched bytes, big-endian, bits 23:16 first
	bitRead     int    // remaining bits in lineData, 0 = line complete
	nextByte    int    // offset within the 63-byte data block
	firstYRead  bool   // double-read toggle for Y expansion

	// Raised when a visible attribute changes while enabled; the
	// renderer must invalidate its character line cache. Cleared when
	// painting stops.
	needsCharCacheRefresh bool
}

func NewSprite(mem Memory) *Sprite {
	return &Sprite{mem: mem}
}

// InitUpdate resets per-frame DMA state at the top of a frame.
func (s *Sprite) InitUpdate() {
	s.nextByte = 0
	s.painting = false
	s.lineData = 0
}

// InitPainting starts a raster band: the first visible line of the
// sprite for this frame.
func (s *Sprite) InitPainting() {
	s.nextByte = 0
	s.painting = true
	s.firstYRead = true
}

// ReadLineData fetches the three bytes for the current line into the
// 24-bit shift register and arms the serializer.
func (s *Sprite) ReadLineData() {
	base := uint16(s.pointer + s.nextByte)
	s.lineData = uint32(s.mem.Read(base))<<16 |
		uint32(s.mem.Read(base+1))<<8 |
		uint32(s.mem.Read(base+2))

	if !s.expandY {
		s.nextByte += 3
	} else {
		// Y expansion reads each source line twice; only the second
		// read advances.
		if !s.firstYRead {
			s.nextByte += 3
		}
		s.firstYRead = !s.firstYRead
	}

	if s.pointer != s.lastPointer {
		s.needsCharCacheRefresh = true
		s.lastPointer = s.pointer
	}

	if s.expandX {
		s.bitRead = 48
	} else {
		s.bitRead = 24
	}
}

// GetNextPixel serialises one output pixel and returns its color index
// 0-3. 0 is transparent. In single-color mode only 0 and 2 occur, so
// index 0 doubles as the transparent background.
func (s *Sprite) GetNextPixel() uint8 {
	if s.bitRead <= 0 {
		return 0
	}
	s.bitRead--
	shift := s.bitRead
	if s.expandX {
		shift >>= 1
	}
	if s.multicolor {
		// Two adjacent bits form the index; masking the shift to even
		// keeps the pair stable across both pixels.
		return uint8((s.lineData >> (uint(shift) &^ 1)) & 3)
	}
	return uint8((s.lineData>>uint(shift))&1) << 1
}

// IsLineFinished reports whether the serializer has drained the line.
func (s *Sprite) IsLineFinished() bool {
	return s.bitRead <= 0
}

// IsBeyondLastByte reports whether DMA has consumed the whole data
// block for this frame.
func (s *Sprite) IsBeyondLastByte() bool {
	return s.nextByte >= spriteDataLen
}

// NeedsCharCacheRefresh reports the pending cache invalidation signal.
func (s *Sprite) NeedsCharCacheRefresh() bool {
	return s.needsCharCacheRefresh
}

// markChanged implements the attribute-change policy: a visible
// attribute changing on an enabled sprite dirties the character cache.
func (s *Sprite) markChanged() {
	if s.enabled {
		s.needsCharCacheRefresh = true
	}
}

func (s *Sprite) X() int { return s.x }

func (s *Sprite) SetX(x int) {
	if x == s.x {
		return
	}
	s.x = x
	s.markChanged()
}

func (s *Sprite) Y() int { return s.y }

func (s *Sprite) SetY(y int) {
	if y == s.y {
		return
	}
	s.y = y
	s.markChanged()
}

func (s *Sprite) Enabled() bool { return s.enabled }

func (s *Sprite) SetEnabled(enabled bool) {
	if enabled == s.enabled {
		return
	}
	s.enabled = enabled
	// Appearing and disappearing both invalidate the cache.
	s.needsCharCacheRefresh = true
}

func (s *Sprite) Priority() bool { return s.priority }

func (s *Sprite) SetPriority(priority bool) {
	if priority == s.priority {
		return
	}
	s.priority = priority
	s.markChanged()
}

func (s *Sprite) ExpandY() bool { return s.expandY }

func (s *Sprite) SetExpandY(expand bool) {
	if expand == s.expandY {
		return
	}
	s.expandY = expand
	s.markChanged()
}

func (s *Sprite) ExpandX() bool { return s.expandX }

// SetExpandX toggles horizontal doubling. Mid-line the remaining bit
// count is rescaled so the pixel count left on the line is preserved.
func (s *Sprite) SetExpandX(expand bool) {
	if expand == s.expandX {
		return
	}
	s.expandX = expand
	if expand {
		s.bitRead *= 2
	} else {
		s.bitRead /= 2
	}
	s.markChanged()
}

func (s *Sprite) Multicolor() bool { return s.multicolor }

// SetMulticolor selects 2-bit pixels. Does not dirty the cache.
func (s *Sprite) SetMulticolor(multicolor bool) {
	s.multicolor = multicolor
}

func (s *Sprite) Color(n int) uint8 { return s.colors[n&3] }

// SetColor assigns a palette entry. Does not dirty the cache.
func (s *Sprite) SetColor(n int, color uint8) {
	s.colors[n&3] = color
}

func (s *Sprite) Painting() bool { return s.painting }

// SetPainting marks DMA active for the current raster band. Stopping
// painting is the only thing that clears the cache refresh signal.
func (s *Sprite) SetPainting(painting bool) {
	s.painting = painting
	if !painting {
		s.needsCharCacheRefresh = false
	}
}

func (s *Sprite) DataPointer() int { return s.pointer }

// SetDataPointer points DMA at the sprite's 63-byte data block.
func (s *Sprite) SetDataPointer(pointer int) {
	s.pointer = pointer
}

// Save writes the sprite's mutable state in snapshot field order.
func (s *Sprite) Save(w *snapshot.Writer) error {
	w.WriteInt(s.x)
	w.WriteInt(s.y)
	w.WriteBool(s.priority)
	w.WriteBool(s.enabled)
	w.WriteBool(s.expandX)
	w.WriteBool(s.expandY)
	w.WriteBool(s.firstYRead)
	w.WriteBool(s.multicolor)
	w.WriteBool(s.painting)
	w.WriteBool(s.needsCharCacheRefresh)
	colors := make([]int, len(s.colors))
	for i, c := range s.colors {
		colors[i] = int(c)
	}
	w.WriteInts(colors)
	w.WriteInt(s.bitRead)
	w.WriteInt(s.lastPointer)
	w.WriteInt(int(s.lineData))
	w.WriteInt(s.nextByte)
	w.WriteInt(s.pointer)
	return w.Err()
}

// Restore reads back the state written by Save.
func (s *Sprite) Restore(r *snapshot.Reader) error {
	s.x = r.ReadInt()
	s.y = r.ReadInt()
	s.priority = r.ReadBool()
	s.enabled = r.ReadBool()
	s.expandX = r.ReadBool()
	s.expandY = r.ReadBool()
	s.firstYRead = r.ReadBool()
	s.multicolor = r.ReadBool()
	s.painting = r.ReadBool()
	s.needsCharCacheRefresh = r.ReadBool()
	for i, c := range r.ReadInts() {
		if i < len(s.colors) {
			s.colors[i] = uint8(c)
		}
	}
	s.bitRead = r.ReadInt()
	s.lastPointer = r.ReadInt()
	s.lineData = uint32(r.ReadInt())
	s.nextByte = r.ReadInt()
	s.pointer = r.ReadInt()
	return r.Err()
}
