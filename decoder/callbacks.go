package decoder

// CallbackResult is returned by every TokenSink method to tell the decoder
// whether to keep parsing or to abort.
type CallbackResult int

const (
	// Continue tells the decoder to keep processing subsequent input.
	Continue CallbackResult = iota
	// Abort tells the decoder to stop immediately; the decoder latches
	// format.StatusCanceledByClient and every later call becomes a no-op.
	Abort
)

// TokenSink receives one call per fully decoded token, in stream order,
// synchronously from within Feed. It is the Go-idiomatic stand-in for the
// reference implementation's table of function-pointer callbacks plus an
// opaque user context: a Go closure or method receiver already carries
// whatever state a void* context would have, so no separate context
// parameter is threaded through these methods.
type TokenSink interface {
	Null() CallbackResult
	Boolean(v bool) CallbackResult
	Integer(v int64) CallbackResult
	Double(v float64) CallbackResult
	// Number is reserved for future text-preserving numerics. The decoder
	// never calls it; implementations may leave it a no-op.
	Number(text []byte) CallbackResult
	String(v []byte) CallbackResult
	MapKey(v []byte) CallbackResult
	Binary(v []byte) CallbackResult
	StartMap() CallbackResult
	EndMap() CallbackResult
	StartArray() CallbackResult
	EndArray() CallbackResult
}

// NopSink is a TokenSink whose methods all return Continue and discard
// their arguments. Embed it to implement only the callbacks a caller
// cares about.
type NopSink struct{}

func (NopSink) Null() CallbackResult           { return Continue }
func (NopSink) Boolean(bool) CallbackResult    { return Continue }
func (NopSink) Integer(int64) CallbackResult   { return Continue }
func (NopSink) Double(float64) CallbackResult  { return Continue }
func (NopSink) Number([]byte) CallbackResult   { return Continue }
func (NopSink) String([]byte) CallbackResult   { return Continue }
func (NopSink) MapKey([]byte) CallbackResult   { return Continue }
func (NopSink) Binary([]byte) CallbackResult   { return Continue }
func (NopSink) StartMap() CallbackResult       { return Continue }
func (NopSink) EndMap() CallbackResult         { return Continue }
func (NopSink) StartArray() CallbackResult     { return Continue }
func (NopSink) EndArray() CallbackResult       { return Continue }
