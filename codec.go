package cvrdt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"google.golang.org/protobuf/encoding/protowire"
)

// Payloads are encoded in the protobuf wire format, so any protobuf
// runtime can read them given these messages:
//
//	message OneWayBoolean { bool flag = 1; }
//	message GCounter      { uint64 id = 1; repeated uint64 counts = 2; }
//	message PNCounter     { uint64 id = 1; repeated uint64 positive = 2; repeated uint64 negative = 3; }
//	message GSet          { repeated bytes values = 1; }
//	message TwoPhaseSet   { repeated bytes added = 1; repeated bytes removed = 2; }
//	message LWWRegister   { bytes value = 1; sint64 timestamp = 2; }
//
// Set elements are written in byte order, so equal payloads always have
// equal encodings (and equal Digests). Decoding skips unknown fields and
// accepts both packed and unpacked vectors. Decoded payloads have not
// been validated; pass them to the type's constructor.

var (
	defaultMarshal   = json.Marshal
	defaultUnmarshal = json.Unmarshal
)

// ElementCodec converts the elements of a set, or the value of a
// register, to and from bytes.
type ElementCodec[X any] struct {
	Marshal   func(X) ([]byte, error)
	Unmarshal func([]byte, *X) error
}

// JSONElements returns an ElementCodec using encoding/json.
func JSONElements[X any]() ElementCodec[X] {
	return ElementCodec[X]{
		Marshal: func(x X) ([]byte, error) {
			return defaultMarshal(x)
		},
		Unmarshal: func(b []byte, x *X) error {
			return defaultUnmarshal(b, x)
		},
	}
}

func (c ElementCodec[X]) orDefault() ElementCodec[X] {
	if c.Marshal == nil || c.Unmarshal == nil {
		return JSONElements[X]()
	}
	return c
}

// MarshalOneWayBoolean encodes a OneWayBoolean payload.
func MarshalOneWayBoolean(flag bool) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(flag))
}

// UnmarshalOneWayBoolean decodes a OneWayBoolean payload.
func UnmarshalOneWayBoolean(b []byte) (bool, error) {
	var flag bool
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return skipField(num, typ, b)
		}
		var v uint64
		n, err := consumeVarint(num, typ, b, &v)
		flag = protowire.DecodeBool(v)
		return n, err
	})
	if err != nil {
		return false, fmt.Errorf("OneWayBoolean: %w", err)
	}
	return flag, nil
}

// MarshalGCounter encodes a GCounter payload.
func MarshalGCounter(p GCounterPayload) []byte {
	var b []byte
	b = appendID(b, 1, p.ID)
	return appendPacked(b, 2, p.Counts)
}

// UnmarshalGCounter decodes a GCounter payload.
func UnmarshalGCounter(b []byte) (GCounterPayload, error) {
	var p GCounterPayload
	p.Counts = []uint64{}
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeID(num, typ, b, &p.ID)
		case 2:
			return consumeUint64s(num, typ, b, &p.Counts)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return GCounterPayload{}, fmt.Errorf("GCounter: %w", err)
	}
	return p, nil
}

// MarshalPNCounter encodes a PNCounter payload.
func MarshalPNCounter(p PNCounterPayload) []byte {
	var b []byte
	b = appendID(b, 1, p.ID)
	b = appendPacked(b, 2, p.Positive)
	return appendPacked(b, 3, p.Negative)
}

// UnmarshalPNCounter decodes a PNCounter payload.
func UnmarshalPNCounter(b []byte) (PNCounterPayload, error) {
	var p PNCounterPayload
	p.Positive = []uint64{}
	p.Negative = []uint64{}
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeID(num, typ, b, &p.ID)
		case 2:
			return consumeUint64s(num, typ, b, &p.Positive)
		case 3:
			return consumeUint64s(num, typ, b, &p.Negative)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return PNCounterPayload{}, fmt.Errorf("PNCounter: %w", err)
	}
	return p, nil
}

// MarshalGSet encodes a GSet payload. A zero codec means JSONElements.
func MarshalGSet[X comparable](values mapset.Set[X], codec ElementCodec[X]) ([]byte, error) {
	b, err := appendSet(nil, 1, values, codec.orDefault())
	if err != nil {
		return nil, fmt.Errorf("GSet: %w", err)
	}
	return b, nil
}

// UnmarshalGSet decodes a GSet payload. A zero codec means JSONElements.
func UnmarshalGSet[X comparable](b []byte, codec ElementCodec[X]) (mapset.Set[X], error) {
	codec = codec.orDefault()
	values := mapset.NewThreadUnsafeSet[X]()
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return skipField(num, typ, b)
		}
		return consumeElement(num, typ, b, values, codec)
	})
	if err != nil {
		return nil, fmt.Errorf("GSet: %w", err)
	}
	return values, nil
}

// MarshalTwoPhaseSet encodes a TwoPhaseSet payload. A zero codec means
// JSONElements.
func MarshalTwoPhaseSet[X comparable](p TwoPhaseSetPayload[X], codec ElementCodec[X]) ([]byte, error) {
	codec = codec.orDefault()
	b, err := appendSet(nil, 1, p.Added, codec)
	if err != nil {
		return nil, fmt.Errorf("TwoPhaseSet added: %w", err)
	}
	b, err = appendSet(b, 2, p.Removed, codec)
	if err != nil {
		return nil, fmt.Errorf("TwoPhaseSet removed: %w", err)
	}
	return b, nil
}

// UnmarshalTwoPhaseSet decodes a TwoPhaseSet payload. A zero codec means
// JSONElements.
func UnmarshalTwoPhaseSet[X comparable](b []byte, codec ElementCodec[X]) (TwoPhaseSetPayload[X], error) {
	codec = codec.orDefault()
	p := TwoPhaseSetPayload[X]{
		Added:   mapset.NewThreadUnsafeSet[X](),
		Removed: mapset.NewThreadUnsafeSet[X](),
	}
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeElement(num, typ, b, p.Added, codec)
		case 2:
			return consumeElement(num, typ, b, p.Removed, codec)
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return TwoPhaseSetPayload[X]{}, fmt.Errorf("TwoPhaseSet: %w", err)
	}
	return p, nil
}

// MarshalLWWRegister encodes an LWWRegister payload. A zero codec means
// JSONElements.
func MarshalLWWRegister[X any](p LWWRegisterPayload[X], codec ElementCodec[X]) ([]byte, error) {
	codec = codec.orDefault()
	value, err := codec.Marshal(p.Value)
	if err != nil {
		return nil, fmt.Errorf("LWWRegister value: %w", err)
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, value)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(p.Timestamp))), nil
}

// UnmarshalLWWRegister decodes an LWWRegister payload. A zero codec means
// JSONElements.
func UnmarshalLWWRegister[X any](b []byte, codec ElementCodec[X]) (LWWRegisterPayload[X], error) {
	codec = codec.orDefault()
	var p LWWRegisterPayload[X]
	var sawValue bool
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			if typ != protowire.BytesType {
				return 0, wireTypeError(num, typ)
			}
			value, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			if err := codec.Unmarshal(value, &p.Value); err != nil {
				return 0, fmt.Errorf("unmarshal value: %w", err)
			}
			sawValue = true
			return n, nil
		case 2:
			var v uint64
			n, err := consumeVarint(num, typ, b, &v)
			p.Timestamp = Timestamp(protowire.DecodeZigZag(v))
			return n, err
		}
		return skipField(num, typ, b)
	})
	if err != nil {
		return LWWRegisterPayload[X]{}, fmt.Errorf("LWWRegister: %w", err)
	}
	if !sawValue {
		return LWWRegisterPayload[X]{}, fmt.Errorf("LWWRegister: missing value")
	}
	return p, nil
}

func appendID(b []byte, num protowire.Number, id int) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(id))
}

func appendPacked(b []byte, num protowire.Number, vs []uint64) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, v)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendSet[X comparable](b []byte, num protowire.Number, s mapset.Set[X], codec ElementCodec[X]) ([]byte, error) {
	if s == nil {
		return b, nil
	}
	encoded := make([][]byte, 0, s.Cardinality())
	var err error
	s.Each(func(x X) bool {
		var e []byte
		e, err = codec.Marshal(x)
		if err != nil {
			err = fmt.Errorf("marshal %v: %w", x, err)
			return true
		}
		encoded = append(encoded, e)
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	})
	for _, e := range encoded {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, e)
	}
	return b, nil
}

func decodeFields(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := field(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		b = b[n:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func wireTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("unexpected wire type %d for field %d", typ, num)
}

func consumeVarint(num protowire.Number, typ protowire.Type, b []byte, v *uint64) (int, error) {
	if typ != protowire.VarintType {
		return 0, wireTypeError(num, typ)
	}
	var n int
	*v, n = protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func consumeID(num protowire.Number, typ protowire.Type, b []byte, id *int) (int, error) {
	var v uint64
	n, err := consumeVarint(num, typ, b, &v)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("replica id %d too large", v)
	}
	*id = int(v)
	return n, nil
}

func consumeUint64s(num protowire.Number, typ protowire.Type, b []byte, vs *[]uint64) (int, error) {
	switch typ {
	case protowire.VarintType:
		var v uint64
		n, err := consumeVarint(num, typ, b, &v)
		if err != nil {
			return 0, err
		}
		*vs = append(*vs, v)
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return 0, protowire.ParseError(m)
			}
			*vs = append(*vs, v)
			packed = packed[m:]
		}
		return n, nil
	}
	return 0, wireTypeError(num, typ)
}

func consumeElement[X comparable](num protowire.Number, typ protowire.Type, b []byte, s mapset.Set[X], codec ElementCodec[X]) (int, error) {
	if typ != protowire.BytesType {
		return 0, wireTypeError(num, typ)
	}
	e, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	var x X
	if err := codec.Unmarshal(e, &x); err != nil {
		return 0, fmt.Errorf("unmarshal element: %w", err)
	}
	s.Add(x)
	return n, nil
}
