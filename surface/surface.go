// Package surface implements a pixel buffer shared between one producer and
// the render pass that displays it.
//
// Access is gated by a non-blocking lock. A writer excludes everyone else;
// readers may overlap each other but never a writer. Acquire calls never
// wait: under contention they return ErrBusy and the caller either drops the
// frame (producer) or shows the previous one for another cycle (renderer).
// Once a write handle is released, the next read observes the complete frame.
package surface

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"pixsurf/logging"

	"golang.org/x/image/draw"
)

var (
	// ErrBusy is returned when the lock is held by a conflicting party.
	ErrBusy = errors.New("surface: busy")

	// ErrInvalidState is returned on API misuse, such as resizing a locked
	// surface or releasing a handle twice.
	ErrInvalidState = errors.New("surface: invalid state")

	// ErrUnsupportedFormat is returned for pixel layouts that cannot be
	// allocated or rendered.
	ErrUnsupportedFormat = errors.New("surface: unsupported format")

	// ErrInvalidDimensions is returned when width, height or stride is invalid.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")
)

// LockState reports who currently holds a surface.
type LockState uint8

const (
	Unlocked LockState = iota
	LockedForWrite
	LockedForRead
)

func (s LockState) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case LockedForWrite:
		return "locked-for-write"
	case LockedForRead:
		return "locked-for-read"
	}
	return fmt.Sprintf("LockState(%d)", uint8(s))
}

// Surface owns a pixel buffer and the lock guarding it.
type Surface struct {
	mu      sync.Mutex
	width   int
	height  int
	stride  int
	format  PixelFormat
	pix     []byte
	writing bool
	readers int
	closed  bool
	gen     uint64 // bumped whenever pix is replaced or freed
	seq     uint64 // bumped on every published frame
}

// New allocates a zeroed surface with a tightly packed stride.
func New(width, height int, f PixelFormat) (*Surface, error) {
	return NewStride(width, height, f, width*f.BytesPerPixel())
}

// NewStride allocates a zeroed surface whose rows are stride bytes apart.
func NewStride(width, height int, f PixelFormat, stride int) (*Surface, error) {
	if err := validate(width, height, f, stride); err != nil {
		return nil, err
	}
	return &Surface{
		width:  width,
		height: height,
		stride: stride,
		format: f,
		pix:    make([]byte, height*stride),
		gen:    1,
	}, nil
}

// MustNew is like New but panics on error.
// Use only when errors are programming mistakes (e.g., hardcoded dimensions).
func MustNew(width, height int, f PixelFormat) *Surface {
	s, err := New(width, height, f)
	if err != nil {
		panic(err)
	}
	return s
}

func validate(width, height int, f PixelFormat, stride int) error {
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	// callers compute stride as width*bpp, which wraps for huge widths
	if width > math.MaxInt/bpp {
		return fmt.Errorf("%w: row of %d pixels overflows", ErrInvalidDimensions, width)
	}
	if stride < width*bpp {
		return fmt.Errorf("%w: stride %d shorter than row of %d bytes", ErrInvalidDimensions, stride, width*bpp)
	}
	if height > math.MaxInt/stride {
		return fmt.Errorf("%w: %d rows of %d bytes overflow", ErrInvalidDimensions, height, stride)
	}
	return nil
}

// Size returns the current dimensions.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Format returns the current pixel format.
func (s *Surface) Format() PixelFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Stride returns the distance in bytes between vertically adjacent pixels.
func (s *Surface) Stride() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stride
}

// Seq returns the number of frames published so far.
func (s *Surface) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// State returns the current lock state.
func (s *Surface) State() LockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.writing:
		return LockedForWrite
	case s.readers > 0:
		return LockedForRead
	}
	return Unlocked
}

// AcquireWrite grants exclusive mutable access to the whole buffer.
// It returns ErrBusy if any read or write handle is outstanding.
// The handle must be released on every exit path.
func (s *Surface) AcquireWrite() (*WriteHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: acquire write on closed surface", ErrInvalidState)
	}
	if s.writing || s.readers > 0 {
		return nil, ErrBusy
	}
	s.writing = true
	return &WriteHandle{
		s:      s,
		pix:    s.pix,
		width:  s.width,
		height: s.height,
		stride: s.stride,
		format: s.format,
	}, nil
}

// AcquireRead grants shared read access and returns a handle whose View
// describes the buffer. It returns ErrBusy while a write handle is
// outstanding. Readers may overlap; writers wait for all of them.
func (s *Surface) AcquireRead() (*ReadHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: acquire read on closed surface", ErrInvalidState)
	}
	if s.writing {
		return nil, ErrBusy
	}
	s.readers++
	h := &ReadHandle{s: s}
	h.view = RenderView{
		h:      h,
		gen:    s.gen,
		seq:    s.seq,
		pix:    s.pix,
		width:  s.width,
		height: s.height,
		stride: s.stride,
		format: s.format,
	}
	return h, nil
}

// Write runs fn with a write handle and releases it afterwards, even if fn
// returns an error or panics.
func (s *Surface) Write(fn func(*WriteHandle) error) (err error) {
	h, err := s.AcquireWrite()
	if err != nil {
		return err
	}
	defer func() {
		if relErr := h.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn(h)
}

// Read runs fn with the current view and releases the read handle afterwards.
// The view must not be retained after fn returns.
func (s *Surface) Read(fn func(*RenderView) error) (err error) {
	h, err := s.AcquireRead()
	if err != nil {
		return err
	}
	defer func() {
		if relErr := h.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn(h.View())
}

// Resize replaces the buffer with a zeroed one of the new geometry. Calling
// it while any handle is outstanding is a programming error and returns
// ErrInvalidState. Views obtained before the call stay invalid.
func (s *Surface) Resize(width, height int, f PixelFormat) error {
	stride := width * f.BytesPerPixel()
	if err := validate(width, height, f, stride); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return fmt.Errorf("%w: resize of closed surface", ErrInvalidState)
	case s.writing:
		return fmt.Errorf("%w: resize while locked for write", ErrInvalidState)
	case s.readers > 0:
		return fmt.Errorf("%w: resize while locked for read by %d readers", ErrInvalidState, s.readers)
	}

	logging.Logger().Debug("surface resized",
		"from", fmt.Sprintf("%dx%d/%s", s.width, s.height, s.format),
		"to", fmt.Sprintf("%dx%d/%s", width, height, f))

	s.width = width
	s.height = height
	s.stride = stride
	s.format = f
	s.pix = make([]byte, height*stride)
	s.gen++
	return nil
}

// Close frees the buffer. Further acquisitions fail with ErrInvalidState.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.writing || s.readers > 0 {
		return fmt.Errorf("%w: close while locked", ErrInvalidState)
	}
	s.closed = true
	s.pix = nil
	s.gen++
	return nil
}

// WriteHandle is a borrowed, exclusive view of the buffer for mutation.
type WriteHandle struct {
	s        *Surface
	pix      []byte
	width    int
	height   int
	stride   int
	format   PixelFormat
	released atomic.Bool
}

func (h *WriteHandle) Width() int          { return h.width }
func (h *WriteHandle) Height() int         { return h.height }
func (h *WriteHandle) Stride() int         { return h.stride }
func (h *WriteHandle) Format() PixelFormat { return h.format }

// Bytes returns the whole buffer, or nil once the handle is released.
func (h *WriteHandle) Bytes() []byte {
	if h.released.Load() {
		return nil
	}
	return h.pix
}

// Row returns the bytes of row y, or nil if y is out of range or the handle
// is released.
func (h *WriteHandle) Row(y int) []byte {
	if h.released.Load() || y < 0 || y >= h.height {
		return nil
	}
	off := y * h.stride
	return h.pix[off : off+h.width*h.format.BytesPerPixel()]
}

// Image returns a draw.Image sharing the buffer, for use with image/draw and
// golang.org/x/image/draw. It must not be used after Release.
func (h *WriteHandle) Image() (draw.Image, error) {
	if h.released.Load() {
		return nil, fmt.Errorf("%w: write handle already released", ErrInvalidState)
	}
	return wrap(h.pix, h.width, h.height, h.stride, h.format)
}

// Fill sets every pixel to c.
func (h *WriteHandle) Fill(c color.Color) error {
	if h.released.Load() {
		return fmt.Errorf("%w: write handle already released", ErrInvalidState)
	}
	px := h.format.Encode(c)
	for y := 0; y < h.height; y++ {
		row := h.Row(y)
		for x := 0; x < len(row); x += len(px) {
			copy(row[x:], px)
		}
	}
	return nil
}

// Release publishes the written frame and unlocks the surface.
func (h *WriteHandle) Release() error {
	return h.release(true)
}

// Abort unlocks the surface without publishing. The buffer keeps whatever
// was written, but Seq does not advance, so readers can tell the frame
// apart from a completed one.
func (h *WriteHandle) Abort() error {
	return h.release(false)
}

func (h *WriteHandle) release(publish bool) error {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.released.Swap(true) {
		return fmt.Errorf("%w: write handle released twice", ErrInvalidState)
	}
	s.writing = false
	if publish {
		s.seq++
	}
	return nil
}

// ReadHandle is a borrowed shared lock on a surface.
type ReadHandle struct {
	s        *Surface
	view     RenderView
	released atomic.Bool
}

// View returns the render view bound to this handle.
func (h *ReadHandle) View() *RenderView {
	return &h.view
}

// Release drops the read lock and invalidates the view.
func (h *ReadHandle) Release() error {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.released.Swap(true) {
		return fmt.Errorf("%w: read handle released twice", ErrInvalidState)
	}
	s.readers--
	return nil
}
