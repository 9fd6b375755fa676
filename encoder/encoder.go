// Package encoder implements the BJSON encoder: a narrowest-width tag
// chooser for scalars, and a deferred-header technique for containers —
// a worst-case 9-byte placeholder is reserved at OpenMap/OpenArray time
// and patched down to its narrowest size class when the matching Close
// call learns the container's final body size.
package encoder

import (
	"fmt"
	"math"

	"github.com/kemu-studio/bjson/endian"
	"github.com/kemu-studio/bjson/errs"
	"github.com/kemu-studio/bjson/format"
	"github.com/kemu-studio/bjson/internal/options"
	"github.com/kemu-studio/bjson/internal/pool"
)

// le is the wire byte order: BJSON length and value fields are always
// little-endian.
var le = endian.GetLittleEndianEngine()

// headerReserve is the worst-case byte width of a container header: one
// tag byte plus an 8-byte (qword) body-length field.
const headerReserve = 9

type frame struct {
	isMap        bool
	headerOffset int
	expectKey    bool
}

// Encoder is a single-use, single-threaded BJSON encoder. Build a
// document with the Emit/Open/Close methods, then read GetOutput. Once
// Status() is non-ok, every method is a no-op.
type Encoder struct {
	buf      *pool.ByteBuffer
	pool     *pool.ByteBufferPool
	maxDepth int
	stack    []frame

	status format.Status
	err    error
}

// New creates an Encoder configured by opts.
func New(opts ...Option) *Encoder {
	e := &Encoder{maxDepth: format.MaxDepth}
	_ = options.Apply(e, opts...)
	if e.buf == nil {
		e.buf = pool.NewByteBuffer(pool.BlobBufferDefaultSize)
	}
	return e
}

// Status returns the encoder's sticky status code.
func (e *Encoder) Status() format.Status {
	return e.status
}

// FormatErrorMessage renders the encoder's current status.
func (e *Encoder) FormatErrorMessage(verbose bool) string {
	if !verbose {
		return e.status.String()
	}
	return fmt.Sprintf("%s (depth %d)", e.status.String(), len(e.stack))
}

// GetOutput returns the bytes written so far. Valid to call at any time,
// including before Finish, for callers inspecting a partial document.
func (e *Encoder) GetOutput() []byte {
	return e.buf.Bytes()
}

// Release returns the output buffer to the pool supplied via
// WithBufferPool, if any. The Encoder must not be used afterward.
func (e *Encoder) Release() {
	if e.pool != nil {
		e.pool.Put(e.buf)
		e.buf = nil
	}
}

// Finish validates that every opened container has a matching Close call.
func (e *Encoder) Finish() error {
	if e.status != format.StatusOK {
		return e.err
	}
	if len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		if top.isMap {
			e.fail(format.StatusErrUnclosedMap)
		} else {
			e.fail(format.StatusErrUnclosedArray)
		}
		return e.err
	}
	return nil
}

func (e *Encoder) fail(status format.Status) {
	e.status = status
	e.err = errs.FromStatus(status)
}

// checkKeyPosition reports whether a token may be emitted here: any token
// is legal when no key is pending, but only a string satisfies a pending
// map key.
func (e *Encoder) checkKeyPosition(isString bool) bool {
	if len(e.stack) == 0 {
		return true
	}
	top := &e.stack[len(e.stack)-1]
	if top.isMap && top.expectKey && !isString {
		e.fail(format.StatusErrInvalidObjectKey)
		return false
	}
	return true
}

// rotateTop flips the current frame's key/value turn. Called once after
// every token that completes at the current nesting level, including a
// container open (which also rotates the parent, once, for the slot the
// new container itself occupies) — but never on close, since the parent
// rotation already accounted for the container as a whole when it was
// opened.
func (e *Encoder) rotateTop() {
	if len(e.stack) == 0 {
		return
	}
	top := &e.stack[len(e.stack)-1]
	if top.isMap {
		top.expectKey = !top.expectKey
	}
}

func (e *Encoder) writeByte(b byte) {
	e.buf.MustWrite([]byte{b})
}

func (e *Encoder) writeUint(v uint64, width int) {
	var tmp [8]byte
	writeUintLE(tmp[:width], v, width)
	e.buf.MustWrite(tmp[:width])
}

func writeUintLE(b []byte, v uint64, width int) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		le.PutUint16(b, uint16(v))
	case 4:
		le.PutUint32(b, uint32(v))
	default:
		le.PutUint64(b, v)
	}
}

func widthFor(v uint64) int {
	switch {
	case v <= 0xFF:
		return 1
	case v <= 0xFFFF:
		return 2
	case v <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

// EmitNull appends a null token.
func (e *Encoder) EmitNull() {
	if e.status != format.StatusOK {
		return
	}
	if !e.checkKeyPosition(false) {
		return
	}
	e.writeByte(byte(format.TagNull))
	e.rotateTop()
}

// EmitBool appends a strict boolean token. Booleans always use the
// strict_true/strict_false tags, keeping them unambiguous on the wire
// from the shared 0/1 integer immediates.
func (e *Encoder) EmitBool(v bool) {
	if e.status != format.StatusOK {
		return
	}
	if !e.checkKeyPosition(false) {
		return
	}
	if v {
		e.writeByte(byte(format.TagStrictTrue))
	} else {
		e.writeByte(byte(format.TagStrictFalse))
	}
	e.rotateTop()
}

// EmitInteger appends a signed 64-bit integer using the narrowest tag
// that can represent it: the strict_integer_zero/strict_integer_one
// immediates for those two values, otherwise the narrowest positive_integer{8,16,32,64} or
// negative_integer{8,16,32,64} whose magnitude fits.
func (e *Encoder) EmitInteger(v int64) {
	if e.status != format.StatusOK {
		return
	}
	if !e.checkKeyPosition(false) {
		return
	}
	switch v {
	case 0:
		e.writeByte(byte(format.TagStrictIntegerZero))
	case 1:
		e.writeByte(byte(format.TagStrictIntegerOne))
	default:
		var base format.Tag
		var magnitude uint64
		if v > 0 {
			base = format.PositiveIntBase
			magnitude = uint64(v)
		} else {
			base = format.NegativeIntBase
			// Safe magnitude of v, avoiding signed overflow at MinInt64.
			magnitude = uint64(-(v+1)) + 1
		}
		width := widthFor(magnitude)
		e.writeByte(byte(format.Sized(base, width)))
		e.writeUint(magnitude, width)
	}
	e.rotateTop()
}

// EmitDouble appends a floating-point token. Doubles are always written
// as 8-byte float64; there is no float32 compression path. The obsolete
// float tags are never emitted, only decoded.
func (e *Encoder) EmitDouble(f float64) {
	if e.status != format.StatusOK {
		return
	}
	if !e.checkKeyPosition(false) {
		return
	}
	e.writeByte(byte(format.TagFloat64))
	e.writeUint(math.Float64bits(f), 8)
	e.rotateTop()
}

// EmitString appends a UTF-8 string token, usable as either a map key or
// a value depending on the encoder's current position — strings are the
// only token legal in key position, so no key check applies here.
func (e *Encoder) EmitString(s []byte) {
	if e.status != format.StatusOK {
		return
	}
	if len(s) == 0 {
		e.writeByte(byte(format.TagEmptyString))
	} else {
		width := widthFor(uint64(len(s)))
		e.writeByte(byte(format.Sized(format.StringBase, width)))
		e.writeUint(uint64(len(s)), width)
		e.buf.MustWrite(s)
	}
	e.rotateTop()
}

// EmitCString appends a UTF-8 string token from a Go string, the
// nul-terminated-string equivalent of EmitString.
func (e *Encoder) EmitCString(s string) {
	e.EmitString([]byte(s))
}

// Clear is reserved for future use and always fails with
// not_implemented.
func (e *Encoder) Clear() {
	if e.status != format.StatusOK {
		return
	}
	e.fail(format.StatusErrNotImplemented)
}

// Reset is reserved for future use and always fails with
// not_implemented.
func (e *Encoder) Reset(separator byte) {
	if e.status != format.StatusOK {
		return
	}
	e.fail(format.StatusErrNotImplemented)
}

// EmitBinary appends an opaque binary token. Binary is never stringish,
// so it is illegal in key position.
func (e *Encoder) EmitBinary(b []byte) {
	if e.status != format.StatusOK {
		return
	}
	if !e.checkKeyPosition(false) {
		return
	}
	width := widthFor(uint64(len(b)))
	e.writeByte(byte(format.Sized(format.BinaryBase, width)))
	e.writeUint(uint64(len(b)), width)
	e.buf.MustWrite(b)
	e.rotateTop()
}

// OpenMap begins a map value; it must be balanced by CloseMap.
func (e *Encoder) OpenMap() { e.enterContainer(true) }

// OpenArray begins an array value; it must be balanced by CloseArray.
func (e *Encoder) OpenArray() { e.enterContainer(false) }

// CloseMap ends the innermost map.
func (e *Encoder) CloseMap() { e.leaveContainer(true) }

// CloseArray ends the innermost array.
func (e *Encoder) CloseArray() { e.leaveContainer(false) }

func (e *Encoder) enterContainer(isMap bool) {
	if e.status != format.StatusOK {
		return
	}
	if !e.checkKeyPosition(false) {
		return
	}
	// Rotate the parent: this container occupies the value slot that was
	// pending (or the key slot, if it's the document root / an array).
	e.rotateTop()

	if len(e.stack) >= e.maxDepth {
		e.fail(format.StatusErrTooManyNestedContainers)
		return
	}

	offset := e.buf.Len()
	e.buf.ExtendOrGrow(headerReserve)
	for i := 0; i < headerReserve; i++ {
		e.buf.B[offset+i] = 0
	}

	e.stack = append(e.stack, frame{isMap: isMap, headerOffset: offset})
	// Rotate the child: a freshly opened non-empty map expects a key
	// first. Closing immediately (an empty container) simply finds this
	// already-rotated state valid.
	e.rotateTop()
}

func (e *Encoder) leaveContainer(wantMap bool) {
	if e.status != format.StatusOK {
		return
	}
	if len(e.stack) == 0 {
		if wantMap {
			e.fail(format.StatusErrCloseMapAtRootLevel)
		} else {
			e.fail(format.StatusErrCloseArrayAtRootLevel)
		}
		return
	}

	top := e.stack[len(e.stack)-1]
	if top.isMap != wantMap {
		if wantMap {
			e.fail(format.StatusErrCloseMapButArrayOpen)
		} else {
			e.fail(format.StatusErrCloseArrayButMapOpen)
		}
		return
	}
	if top.isMap && !top.expectKey {
		e.fail(format.StatusErrKeyWithoutValue)
		return
	}

	e.stack = e.stack[:len(e.stack)-1]

	bodyStart := top.headerOffset + headerReserve
	bodySize := uint64(e.buf.Len() - bodyStart)
	width := widthFor(bodySize)
	finalLen := 1 + width
	shift := headerReserve - finalLen
	if shift > 0 {
		copy(e.buf.B[bodyStart-shift:e.buf.Len()-shift], e.buf.B[bodyStart:e.buf.Len()])
		e.buf.SetLength(e.buf.Len() - shift)
	}

	base := format.ArrayBase
	if top.isMap {
		base = format.MapBase
	}
	tag := format.Sized(base, width)
	e.buf.B[top.headerOffset] = byte(tag)
	writeUintLE(e.buf.B[top.headerOffset+1:top.headerOffset+1+width], bodySize, width)
}
