package decoder_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kemu-studio/bjson/decoder"
	"github.com/kemu-studio/bjson/format"
)

// recorder is a decoder.TokenSink that records one string per callback, in
// call order, for assertion against an expected event trace.
type recorder struct {
	decoder.NopSink
	events    []string
	abortFrom int // abort on the Nth recorded event onward (0 = never)
}

func (r *recorder) record(s string) decoder.CallbackResult {
	r.events = append(r.events, s)
	if r.abortFrom != 0 && len(r.events) >= r.abortFrom {
		return decoder.Abort
	}
	return decoder.Continue
}

func (r *recorder) Null() decoder.CallbackResult         { return r.record("null") }
func (r *recorder) Boolean(v bool) decoder.CallbackResult { return r.record(fmt.Sprintf("bool:%v", v)) }
func (r *recorder) Integer(v int64) decoder.CallbackResult {
	return r.record(fmt.Sprintf("int:%d", v))
}
func (r *recorder) Double(v float64) decoder.CallbackResult {
	return r.record(fmt.Sprintf("double:%v", v))
}
func (r *recorder) String(v []byte) decoder.CallbackResult {
	return r.record(fmt.Sprintf("string:%s", v))
}
func (r *recorder) MapKey(v []byte) decoder.CallbackResult {
	return r.record(fmt.Sprintf("key:%s", v))
}
func (r *recorder) Binary(v []byte) decoder.CallbackResult {
	return r.record(fmt.Sprintf("binary:%x", v))
}
func (r *recorder) StartMap() decoder.CallbackResult   { return r.record("startmap") }
func (r *recorder) EndMap() decoder.CallbackResult     { return r.record("endmap") }
func (r *recorder) StartArray() decoder.CallbackResult { return r.record("startarray") }
func (r *recorder) EndArray() decoder.CallbackResult   { return r.record("endarray") }

// feedAll pushes data to d in a single Feed call, then calls Finish.
func feedAll(t *testing.T, d *decoder.Decoder, data []byte) error {
	t.Helper()
	if err := d.Feed(data); err != nil {
		return err
	}
	return d.Finish()
}

func TestDecodeSingleByteImmediates(t *testing.T) {
	cases := []struct {
		name string
		b    byte
		want string
	}{
		{"null", 0x00, "null"},
		{"zero_or_false_as_int", 0x01, "int:0"},
		{"one_or_true_as_int", 0x03, "int:1"},
		{"strict_false", 0x18, "bool:false"},
		{"strict_true", 0x19, "bool:true"},
		{"strict_integer_zero", 0x1A, "int:0"},
		{"strict_integer_one", 0x1B, "int:1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &recorder{}
			d := decoder.New(r)
			require.NoError(t, feedAll(t, d, []byte{c.b}))
			require.Equal(t, format.StatusOK, d.Status())
			require.Equal(t, []string{c.want}, r.events)
		})
	}
}

func TestDecodeEmptyString(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	require.NoError(t, feedAll(t, d, []byte{0x02}))
	require.Equal(t, []string{"string:"}, r.events)
}

func TestDecodePositiveAndNegativeIntegers(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// positive_integer8 = 42
	require.NoError(t, feedAll(t, d, []byte{0x04, 0x2A}))
	require.Equal(t, []string{"int:42"}, r.events)

	r2 := &recorder{}
	d2 := decoder.New(r2)
	// negative_integer8, magnitude 5 -> -5
	require.NoError(t, feedAll(t, d2, []byte{0x08, 0x05}))
	require.Equal(t, []string{"int:-5"}, r2.events)
}

func TestDecodeNegativeMinInt64(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// negative_integer64, magnitude 2^63 -> math.MinInt64
	require.NoError(t, feedAll(t, d, []byte{0x0B, 0, 0, 0, 0, 0, 0, 0, 0x80}))
	require.Equal(t, []string{fmt.Sprintf("int:%d", int64(math.MinInt64))}, r.events)
}

func TestDecodeFloats(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want float64
	}{
		{"obsolete_float32_one", []byte{0x0C, 0, 0, 0x80, 0x3F}, 1.0},
		{"obsolete_float64_one", []byte{0x0D, 0, 0, 0, 0, 0, 0, 0xF0, 0x3F}, 1.0},
		{"float32_three_point_five", []byte{0x0E, 0, 0, 0x60, 0x40}, 3.5},
		{"float64_two", []byte{0x0F, 0, 0, 0, 0, 0, 0, 0, 0x40}, 2.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &recorder{}
			d := decoder.New(r)
			require.NoError(t, feedAll(t, d, c.data))
			require.Equal(t, []string{fmt.Sprintf("double:%v", c.want)}, r.events)
		})
	}
}

func TestDecodeStringAndBinaryWidths(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// string16, length 2, "hi"
	require.NoError(t, feedAll(t, d, []byte{0x11, 0x02, 0x00, 'h', 'i'}))
	require.Equal(t, []string{"string:hi"}, r.events)

	r2 := &recorder{}
	d2 := decoder.New(r2)
	// binary8, length 2, 0xDE 0xAD
	require.NoError(t, feedAll(t, d2, []byte{0x14, 0x02, 0xDE, 0xAD}))
	require.Equal(t, []string{"binary:dead"}, r2.events)
}

func TestDecodeEmptyArrayAndMap(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	require.NoError(t, feedAll(t, d, []byte{0x20, 0x00}))
	require.Equal(t, []string{"startarray", "endarray"}, r.events)

	r2 := &recorder{}
	d2 := decoder.New(r2)
	require.NoError(t, feedAll(t, d2, []byte{0x24, 0x00}))
	require.Equal(t, []string{"startmap", "endmap"}, r2.events)
}

// nestedMapBytes encodes {"k": [true, 42]}:
//
//	map8  size=8
//	  string8 len=1 "k"        (3 bytes: key)
//	  array8  size=3           (2-byte header)
//	    strict_true             (1 byte)
//	    positive_integer8  42   (2 bytes)
var nestedMapBytes = []byte{
	0x24, 0x08,
	0x10, 0x01, 'k',
	0x20, 0x03,
	0x19,
	0x04, 0x2A,
}

var nestedMapEvents = []string{
	"startmap", "key:k", "startarray", "bool:true", "int:42", "endarray", "endmap",
}

func TestDecodeNestedMapSingleFeed(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	require.NoError(t, feedAll(t, d, nestedMapBytes))
	require.Equal(t, nestedMapEvents, r.events)
}

// TestDecodeFragmentationInvariance checks that splitting the same input
// into any two Feed calls, or into one Feed call per byte, produces the
// identical event trace as a single Feed call.
func TestDecodeFragmentationInvariance(t *testing.T) {
	for split := 0; split <= len(nestedMapBytes); split++ {
		t.Run(fmt.Sprintf("split_at_%d", split), func(t *testing.T) {
			r := &recorder{}
			d := decoder.New(r)
			require.NoError(t, d.Feed(nestedMapBytes[:split]))
			require.NoError(t, d.Feed(nestedMapBytes[split:]))
			require.NoError(t, d.Finish())
			require.Equal(t, nestedMapEvents, r.events)
		})
	}

	t.Run("one_byte_at_a_time", func(t *testing.T) {
		r := &recorder{}
		d := decoder.New(r)
		for _, b := range nestedMapBytes {
			require.NoError(t, d.Feed([]byte{b}))
		}
		require.NoError(t, d.Finish())
		require.Equal(t, nestedMapEvents, r.events)
	})
}

func TestDecodeKeyWithoutValue(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// map8 size=3: just a key token "k", then the map's declared body ends.
	err := d.Feed([]byte{0x24, 0x03, 0x10, 0x01, 'k'})
	require.Error(t, err)
	require.Equal(t, format.StatusErrKeyWithoutValue, d.Status())
}

func TestDecodeInvalidObjectKey(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// map8 size=1: a null token used as a key.
	err := d.Feed([]byte{0x24, 0x01, 0x00})
	require.Error(t, err)
	require.Equal(t, format.StatusErrInvalidObjectKey, d.Status())
}

func TestDecodeMoreDataThanDeclared(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// array8 declares size=1 but its one child token is 2 bytes wide.
	err := d.Feed([]byte{0x20, 0x01, 0x04, 0x2A})
	require.Error(t, err)
	require.Equal(t, format.StatusErrMoreDataThanDeclared, d.Status())
}

func TestDecodeTooManyNestedContainers(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r, decoder.WithMaxDepth(1))
	// outer array8 size=2 containing one empty inner array8.
	err := d.Feed([]byte{0x20, 0x02, 0x20, 0x00})
	require.Error(t, err)
	require.Equal(t, format.StatusErrTooManyNestedContainers, d.Status())
}

func TestDecodeEmptyInputPassed(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	err := d.Finish()
	require.Error(t, err)
	require.Equal(t, format.StatusErrEmptyInputPassed, d.Status())
}

func TestDecodeUnclosedArray(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	require.NoError(t, d.Feed([]byte{0x20, 0x05}))
	err := d.Finish()
	require.Error(t, err)
	require.Equal(t, format.StatusErrUnclosedArray, d.Status())
}

func TestDecodeUnexpectedEndOfStream(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// positive_integer16 tag, only one of its two length bytes.
	require.NoError(t, d.Feed([]byte{0x05, 0x01}))
	err := d.Finish()
	require.Error(t, err)
	require.Equal(t, format.StatusErrUnexpectedEndOfStream, d.Status())
}

func TestDecodeAbortViaCallback(t *testing.T) {
	r := &recorder{abortFrom: 1}
	d := decoder.New(r)
	err := d.Feed([]byte{0x04, 0x2A})
	require.Error(t, err)
	require.Equal(t, format.StatusCanceledByClient, d.Status())
	require.Contains(t, d.FormatErrorMessage(true), "canceled")
}

func TestDecodeStickyErrorIgnoresFurtherInput(t *testing.T) {
	r := &recorder{}
	d := decoder.New(r)
	// map8 size=1 with a null key triggers invalid_object_key.
	require.Error(t, d.Feed([]byte{0x24, 0x01, 0x00}))
	before := len(r.events)
	status := d.Status()

	err := d.Feed([]byte{0x00})
	require.Error(t, err)
	require.Equal(t, status, d.Status())
	require.Equal(t, before, len(r.events))
}
