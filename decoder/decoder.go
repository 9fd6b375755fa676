// Package decoder implements the BJSON streaming push decoder: a
// per-token stage machine, a fragment cache for chunks that split a field
// across Feed calls, and a bounded container stack, dispatching decoded
// tokens through a TokenSink.
package decoder

import (
	"fmt"
	"math"

	"github.com/kemu-studio/bjson/endian"
	"github.com/kemu-studio/bjson/errs"
	"github.com/kemu-studio/bjson/format"
	"github.com/kemu-studio/bjson/internal/options"
)

// le is the wire byte order: BJSON length and value fields are always
// little-endian.
var le = endian.GetLittleEndianEngine()

type stageT int

const (
	stageAwaitTag stageT = iota
	stageAwaitLength
	stageAwaitBody
	stageErrored
)

type frame struct {
	isMap     bool
	end       uint64
	expectKey bool
}

// Decoder is a single-use, single-threaded streaming BJSON decoder. Feed
// bytes to it in order with Feed; call Finish once the input is
// exhausted. Once Status() is non-ok, every method is a no-op returning
// the same error.
type Decoder struct {
	sink     TokenSink
	maxDepth int

	stage     stageT
	base      format.Tag
	sizeWidth int
	bodySize  uint64
	lastTag   format.Tag

	index uint64
	stack []frame

	cache        []byte
	cacheMissing int

	status format.Status
	err    error
}

// New creates a Decoder delivering tokens to sink, configured by opts.
func New(sink TokenSink, opts ...Option) *Decoder {
	d := &Decoder{
		sink:     sink,
		maxDepth: format.MaxDepth,
		stage:    stageAwaitTag,
	}
	_ = options.Apply(d, opts...)
	return d
}

// Status returns the decoder's sticky status code.
func (d *Decoder) Status() format.Status {
	return d.status
}

// FormatErrorMessage renders the decoder's current status. The verbose
// form matches the reference implementation's diagnostic text:
// "<status-text> near offset <N> (last token is '<token-name>')".
func (d *Decoder) FormatErrorMessage(verbose bool) string {
	if !verbose {
		return d.status.String()
	}
	return fmt.Sprintf("%s near offset %d (last token is '%s')", d.status.String(), d.index, d.lastTag.Name())
}

func (d *Decoder) fail(status format.Status) {
	d.status = status
	d.err = errs.FromStatus(status)
	d.stage = stageErrored
}

func (d *Decoder) notify(result CallbackResult) {
	if result == Abort {
		d.fail(format.StatusCanceledByClient)
	}
}

func (d *Decoder) keyExpected() bool {
	if len(d.stack) == 0 {
		return false
	}
	top := &d.stack[len(d.stack)-1]
	return top.isMap && top.expectKey
}

// Feed pushes the next chunk of wire bytes. It may be called any number
// of times with chunks of any size, including a single byte at a time;
// the tokens delivered do not depend on how the input is split.
func (d *Decoder) Feed(data []byte) error {
	if d.status != format.StatusOK {
		return d.err
	}
	return d.feed(data)
}

func (d *Decoder) feed(data []byte) error {
	if d.cacheMissing > 0 {
		d.cacheFetch(&data)
		if d.cacheMissing == 0 {
			cached := d.cache
			d.cache = nil
			err := d.feed(cached)
			d.cache = cached[:0]
			if err != nil {
				return err
			}
		}
	}

	for len(data) > 0 && d.stage != stageErrored {
		switch d.stage {
		case stageAwaitTag:
			data = d.stepTag(data)
		case stageAwaitLength:
			data = d.stepLength(data)
		case stageAwaitBody:
			data = d.stepBody(data)
		}
		if d.stage == stageAwaitTag {
			d.afterToken()
		}
	}

	if d.status != format.StatusOK {
		return d.err
	}
	return nil
}

func (d *Decoder) stepTag(data []byte) []byte {
	tag := format.Tag(data[0])
	data = data[1:]
	d.index++
	d.lastTag = tag

	if d.keyExpected() && !tag.IsStringish() {
		d.fail(format.StatusErrInvalidObjectKey)
		return data
	}

	switch tag {
	case format.TagNull:
		d.notify(d.sink.Null())
	case format.TagZeroOrFalse:
		d.notify(d.sink.Integer(0))
	case format.TagOneOrTrue:
		d.notify(d.sink.Integer(1))
	case format.TagEmptyString:
		d.emitStringOrKey(nil)
	case format.TagStrictFalse:
		d.notify(d.sink.Boolean(false))
	case format.TagStrictTrue:
		d.notify(d.sink.Boolean(true))
	case format.TagStrictIntegerZero:
		d.notify(d.sink.Integer(0))
	case format.TagStrictIntegerOne:
		d.notify(d.sink.Integer(1))
	default:
		base := tag.Base()
		switch base {
		case format.PositiveIntBase, format.NegativeIntBase, format.FloatBase,
			format.StringBase, format.BinaryBase, format.ArrayBase, format.MapBase:
			d.base = base
			if base == format.FloatBase {
				// Floats are fixed-width, selected by the tag's low bit
				// (4 bytes for the two float32 variants, 8 for the two
				// float64 variants), not by the generic 2-bit size class.
				d.sizeWidth = 4
				if tag&1 == 1 {
					d.sizeWidth = 8
				}
			} else {
				d.sizeWidth = tag.SizeWidth()
			}
			d.stage = stageAwaitLength
		default:
			d.fail(format.StatusErrInvalidDataType)
		}
	}
	return data
}

func (d *Decoder) stepLength(data []byte) []byte {
	need := d.sizeWidth
	if len(data) < need {
		d.cacheBegin(need)
		d.cacheFetch(&data)
		return data
	}

	val := readUintLE(data[:need])
	data = data[need:]
	d.index += uint64(need)
	d.dispatchLength(val)
	return data
}

func (d *Decoder) dispatchLength(val uint64) {
	switch d.base {
	case format.PositiveIntBase:
		d.stage = stageAwaitTag
		d.notify(d.sink.Integer(int64(val)))
	case format.NegativeIntBase:
		d.stage = stageAwaitTag
		d.notify(d.sink.Integer(-int64(val)))
	case format.FloatBase:
		var f float64
		if d.sizeWidth == 4 {
			f = float64(math.Float32frombits(uint32(val)))
		} else {
			f = math.Float64frombits(val)
		}
		d.stage = stageAwaitTag
		d.notify(d.sink.Double(f))
	case format.StringBase, format.BinaryBase:
		d.bodySize = val
		d.stage = stageAwaitBody
	case format.ArrayBase, format.MapBase:
		d.enterContainer(val)
	}
}

func (d *Decoder) stepBody(data []byte) []byte {
	need := d.bodySize
	if uint64(len(data)) < need {
		d.cacheBegin(int(need))
		d.cacheFetch(&data)
		return data
	}

	body := data[:need]
	data = data[need:]
	d.index += need
	d.stage = stageAwaitTag
	if d.base == format.StringBase {
		d.emitStringOrKey(body)
	} else {
		d.notify(d.sink.Binary(body))
	}
	return data
}

func (d *Decoder) emitStringOrKey(b []byte) {
	if d.keyExpected() {
		d.notify(d.sink.MapKey(b))
	} else {
		d.notify(d.sink.String(b))
	}
}

func (d *Decoder) enterContainer(size uint64) {
	if len(d.stack) >= d.maxDepth {
		d.fail(format.StatusErrTooManyNestedContainers)
		return
	}

	isMap := d.base == format.MapBase
	d.stack = append(d.stack, frame{isMap: isMap, end: d.index + size, expectKey: false})
	d.stage = stageAwaitTag
	if isMap {
		d.notify(d.sink.StartMap())
	} else {
		d.notify(d.sink.StartArray())
	}
}

// afterToken runs the container-close sweep and the single map_turn flip
// for every token that returns the decoder to AwaitTag: single-byte
// immediates, completed scalars/strings/binaries, and freshly entered
// containers (which may close immediately if declared empty).
func (d *Decoder) afterToken() {
	for len(d.stack) > 0 {
		top := &d.stack[len(d.stack)-1]
		if d.index > top.end {
			d.fail(format.StatusErrMoreDataThanDeclared)
			return
		}
		if d.index < top.end {
			break
		}

		if top.isMap && top.expectKey {
			d.fail(format.StatusErrKeyWithoutValue)
			return
		}

		isMap := top.isMap
		d.stack = d.stack[:len(d.stack)-1]
		if isMap {
			d.notify(d.sink.EndMap())
		} else {
			d.notify(d.sink.EndArray())
		}
		if d.status != format.StatusOK {
			return
		}
	}

	if len(d.stack) > 0 {
		top := &d.stack[len(d.stack)-1]
		if top.isMap {
			top.expectKey = !top.expectKey
		}
	}
}

func (d *Decoder) cacheBegin(need int) {
	if cap(d.cache) < need {
		d.cache = make([]byte, 0, need)
	} else {
		d.cache = d.cache[:0]
	}
	d.cacheMissing = need
}

func (d *Decoder) cacheFetch(data *[]byte) {
	if d.cacheMissing == 0 {
		return
	}
	n := d.cacheMissing
	if n > len(*data) {
		n = len(*data)
	}
	d.cache = append(d.cache, (*data)[:n]...)
	*data = (*data)[n:]
	d.cacheMissing -= n
}

// Finish validates that the stream ended on a clean token boundary at
// depth zero, in the order the reference implementation checks them.
func (d *Decoder) Finish() error {
	if d.status != format.StatusOK {
		return d.err
	}
	if d.index == 0 {
		d.fail(format.StatusErrEmptyInputPassed)
		return d.err
	}
	if d.stage != stageAwaitTag || d.cacheMissing > 0 {
		d.fail(format.StatusErrUnexpectedEndOfStream)
		return d.err
	}
	if len(d.stack) > 0 {
		top := d.stack[len(d.stack)-1]
		if top.isMap {
			d.fail(format.StatusErrUnclosedMap)
		} else {
			d.fail(format.StatusErrUnclosedArray)
		}
		return d.err
	}
	return nil
}

func readUintLE(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(le.Uint16(b))
	case 4:
		return uint64(le.Uint32(b))
	default:
		return le.Uint64(b)
	}
}
