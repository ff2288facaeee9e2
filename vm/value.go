package vm

// Word represents an Ingot value as a tagged 64-bit word.
//
// Encoding scheme:
//   - Type tag: top 8 bits. Type dispatch is a single shift+compare.
//   - Discriminator: bit 0. Set means the payload is an immediate value
//     inline in the word; clear means the payload is a heap reference.
//   - Payload: bits 3..55. Immediates store the value shifted left by 3.
//     Heap words store the cell handle shifted left by 3, so the low 3
//     bits of a heap payload are always zero (bits 1 and 2 are spare tag
//     bits, currently unused).
//
// Integers at or below MaxImmediateInt are always immediate; above it they
// are always heap-boxed. Booleans are always immediate. Strings are always
// heap-boxed.
type Word uint64

// Tag identifies the type encoded in a Word's top byte.
type Tag byte

const (
	TagInvalid Tag = 0
	TagInteger Tag = 1
	TagString  Tag = 2
	TagBoolean Tag = 3
)

// Encoding constants
const (
	// Type tag occupies the highest byte.
	tagShift      = 56
	tagMask  Word = 0xFF00000000000000

	// Bit 0 distinguishes immediate from heap-reference payloads.
	immediateBit Word = 0x0000000000000001

	// Payload: bits 3..55 (low 3 bits reserved, top byte is the tag).
	payloadMask  Word = 0x00FFFFFFFFFFFFF8
	payloadShift      = 3
)

// MaxImmediateInt is the largest integer representable inline in a word:
// 2^(64-8-3) - 1. Larger integers are heap-boxed. This threshold is a
// fixed property of the encoding, not configurable.
const MaxImmediateInt uint64 = 1<<53 - 1

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagString:
		return "string"
	case TagBoolean:
		return "boolean"
	default:
		return "invalid"
	}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// MakeImmediate encodes an immediate value inline in a word.
// The value must fit the payload field (v <= MaxImmediateInt).
func MakeImmediate(t Tag, v uint64) Word {
	if v > MaxImmediateInt {
		panic("vm: MakeImmediate: value out of immediate range")
	}
	return Word(t)<<tagShift | Word(v)<<payloadShift | immediateBit
}

// MakeHeapRef encodes a heap cell handle in a word. Handles are opaque
// indexes into the heap's slot table; storing them shifted left by 3 keeps
// the low 3 payload bits zero, matching the alignment contract of the
// encoding.
func MakeHeapRef(t Tag, handle int) Word {
	return Word(t)<<tagShift | Word(handle)<<payloadShift&payloadMask
}

// MakeBool encodes a boolean word (always immediate, payload 0 or 1).
func MakeBool(b bool) Word {
	if b {
		return MakeImmediate(TagBoolean, 1)
	}
	return MakeImmediate(TagBoolean, 0)
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Tag returns the type tag in the word's top byte.
func (w Word) Tag() Tag {
	return Tag(w >> tagShift)
}

// IsImmediate reports whether the payload is an immediate value rather
// than a heap reference.
func (w Word) IsImmediate() bool {
	return w&immediateBit != 0
}

// Immediate returns the inline payload value.
// Panics if w is a heap reference.
func (w Word) Immediate() uint64 {
	if !w.IsImmediate() {
		panic("vm: Word.Immediate: not an immediate word")
	}
	return uint64(w&payloadMask) >> payloadShift
}

// HeapHandle returns the heap cell handle in the payload.
// Panics if w is an immediate.
func (w Word) HeapHandle() int {
	if w.IsImmediate() {
		panic("vm: Word.HeapHandle: immediate word has no heap handle")
	}
	return int(w&payloadMask) >> payloadShift
}

// Bool returns the boolean payload.
// Panics if w is not a boolean word.
func (w Word) Bool() bool {
	if w.Tag() != TagBoolean {
		panic("vm: Word.Bool: not a boolean word")
	}
	return w.Immediate() != 0
}
