// Package format defines the wire-level constants of the BJSON binary
// encoding: tag byte layout, status codes and their human-readable text,
// and the library version.
package format

// Tag is a single wire byte: a base kind in the upper bits combined with a
// size class in the low 2 bits selecting the width of the following
// length-or-immediate field (1, 2, 4 or 8 bytes).
type Tag uint8

// Size classes occupy the low 2 bits of a sized Tag.
const (
	SizeByte  Tag = 0 // 1-byte length/value field
	SizeWord  Tag = 1 // 2-byte length/value field
	SizeDWord Tag = 2 // 4-byte length/value field
	SizeQWord Tag = 3 // 8-byte length/value field
)

// Base kinds. A sized tag is Base | sizeClass.
const (
	TagNull        Tag = 0 // single-byte immediate: null
	TagZeroOrFalse Tag = 1 // single-byte immediate: integer 0 / bool false
	TagEmptyString Tag = 2 // single-byte immediate: ""
	TagOneOrTrue   Tag = 3 // single-byte immediate: integer 1 / bool true

	PositiveIntBase Tag = 4  // + size class -> positive_integer{8,16,32,64}
	NegativeIntBase Tag = 8  // + size class -> negative_integer{8,16,32,64}, magnitude stored positive
	FloatBase       Tag = 12

	TagFloat32Obsolete Tag = 12 // obsolete, never emitted, decoded for compatibility
	TagFloat64Obsolete Tag = 13 // obsolete, never emitted, decoded for compatibility
	TagFloat32         Tag = 14
	TagFloat64         Tag = 15

	StringBase Tag = 16 // + size class -> string{8,16,32,64}, length of UTF-8 payload
	BinaryBase Tag = 20 // + size class -> binary{8,16,32,64}, length of opaque payload
	ArrayBase  Tag = 32 // + size class -> array{8,16,32,64}, length is body byte count
	MapBase    Tag = 36 // + size class -> map{8,16,32,64}, length is body byte count

	TagStrictFalse       Tag = 24
	TagStrictTrue        Tag = 25
	TagStrictIntegerZero Tag = 26
	TagStrictIntegerOne  Tag = 27
)

// Base masks off the size class, returning the tag's base kind.
func (t Tag) Base() Tag {
	return t &^ 0x03
}

// SizeClass returns the low 2 bits of t (0..3).
func (t Tag) SizeClass() Tag {
	return t & 0x03
}

// SizeWidth returns the byte width of the length-or-immediate field implied
// by t's size class: 1, 2, 4 or 8.
func (t Tag) SizeWidth() int {
	switch t.SizeClass() {
	case SizeByte:
		return 1
	case SizeWord:
		return 2
	case SizeDWord:
		return 4
	default:
		return 8
	}
}

// Sized builds a tag from a base kind and a byte width (1, 2, 4 or 8),
// choosing the narrowest size class that can express width.
func Sized(base Tag, width int) Tag {
	switch {
	case width <= 1:
		return base | SizeByte
	case width <= 2:
		return base | SizeWord
	case width <= 4:
		return base | SizeDWord
	default:
		return base | SizeQWord
	}
}

// IsStringish reports whether t is legal in an object-key position: any
// string tag (string8..string64) or the empty_string immediate.
func (t Tag) IsStringish() bool {
	return t == TagEmptyString || t.Base() == StringBase
}

// Name returns the token name used in diagnostics, matching the table the
// reference decoder reports in its error messages.
func (t Tag) Name() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

var tokenNames = map[Tag]string{
	TagNull:        "null",
	TagZeroOrFalse: "zero_or_false",
	TagEmptyString: "empty_string",
	TagOneOrTrue:   "one_or_true",

	PositiveIntBase | SizeByte:  "positive_integer8",
	PositiveIntBase | SizeWord:  "positive_integer16",
	PositiveIntBase | SizeDWord: "positive_integer32",
	PositiveIntBase | SizeQWord: "positive_integer64",

	NegativeIntBase | SizeByte:  "negative_integer8",
	NegativeIntBase | SizeWord:  "negative_integer16",
	NegativeIntBase | SizeDWord: "negative_integer32",
	NegativeIntBase | SizeQWord: "negative_integer64",

	TagFloat32Obsolete: "obsolete_float32",
	TagFloat64Obsolete: "obsolete_float64",
	TagFloat32:         "float32",
	TagFloat64:         "float64",

	StringBase | SizeByte:  "string8",
	StringBase | SizeWord:  "string16",
	StringBase | SizeDWord: "string32",
	StringBase | SizeQWord: "string64",

	BinaryBase | SizeByte:  "binary8",
	BinaryBase | SizeWord:  "binary16",
	BinaryBase | SizeDWord: "binary32",
	BinaryBase | SizeQWord: "binary64",

	ArrayBase | SizeByte:  "array8",
	ArrayBase | SizeWord:  "array16",
	ArrayBase | SizeDWord: "array32",
	ArrayBase | SizeQWord: "array64",

	MapBase | SizeByte:  "map8",
	MapBase | SizeWord:  "map16",
	MapBase | SizeDWord: "map32",
	MapBase | SizeQWord: "map64",

	TagStrictFalse:       "strict_false",
	TagStrictTrue:        "strict_true",
	TagStrictIntegerZero: "strict_integer_zero",
	TagStrictIntegerOne:  "strict_integer_one",
}

// Status is the sticky result code carried by a Decoder or Encoder. Once an
// instance reports a Status other than StatusOK, every subsequent operation
// is a no-op that returns the same Status.
type Status int

const (
	StatusOK Status = iota
	StatusCanceledByClient

	StatusErrNotImplemented
	StatusErrInvalidDataType
	StatusErrUnexpectedEndOfStream
	StatusErrUnhandledDecodeStage
	StatusErrTooManyNestedContainers
	StatusErrOutOfMemory
	StatusErrInvalidObjectKey
	StatusErrUnclosedMap
	StatusErrUnclosedArray
	StatusErrKeyWithoutValue
	StatusErrMoreDataThanDeclared
	StatusErrEmptyInputPassed
	StatusErrCloseMapButArrayOpen
	StatusErrCloseArrayButMapOpen
	StatusErrCloseMapAtRootLevel
	StatusErrCloseArrayAtRootLevel
	StatusErrNegativeSize
)

// String returns the human-readable status text used in formatted error
// messages, matching the reference implementation's status table.
func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return "internal error"
}

var statusText = map[Status]string{
	StatusOK:                         "ok",
	StatusCanceledByClient:           "decode canceled via callback return value",
	StatusErrNotImplemented:          "not implemented",
	StatusErrInvalidDataType:         "invalid data type",
	StatusErrUnexpectedEndOfStream:   "unexpected end of stream",
	StatusErrUnhandledDecodeStage:    "unhandled decode stage",
	StatusErrTooManyNestedContainers: "too many nested containers",
	StatusErrOutOfMemory:             "out of memory",
	StatusErrInvalidObjectKey:        "invalid object key",
	StatusErrUnclosedMap:             "unclosed map",
	StatusErrUnclosedArray:           "unclosed array",
	StatusErrKeyWithoutValue:         "missing value after object key",
	StatusErrMoreDataThanDeclared:    "more data than declared",
	StatusErrEmptyInputPassed:        "empty input passed",
	StatusErrCloseMapButArrayOpen:    "going to close map but array open",
	StatusErrCloseArrayButMapOpen:    "going to close array but map open",
	StatusErrCloseMapAtRootLevel:     "going to close map at root level",
	StatusErrCloseArrayAtRootLevel:   "going to close array at root level",
	StatusErrNegativeSize:            "going to encode negative size value",
}

// MaxDepth is the maximum nesting depth of arrays and maps, matching the
// reference implementation's fixed-size container stack.
const MaxDepth = 1024

// Version components, matching the reference implementation's versioning.
const (
	VersionMajor = 1
	VersionMinor = 1
	VersionMicro = 0
)

// VersionText renders the library version as "major.minor.micro".
func VersionText() string {
	return "1.1.0"
}
