package proto_test

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jrhy/cvrdt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, repeated bool) *descriptorpb.FieldDescriptorProto {
	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	if repeated {
		label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	}
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(name),
		Number:   proto.Int32(number),
		Type:     typ.Enum(),
		Label:    label.Enum(),
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

// schema is the protobuf description of the cvrdt payload encodings.
func schema(t *testing.T) protoreflect.FileDescriptor {
	const (
		boolType   = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		uint64Type = descriptorpb.FieldDescriptorProto_TYPE_UINT64
		sint64Type = descriptorpb.FieldDescriptorProto_TYPE_SINT64
		bytesType  = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	)
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("cvrdt.proto"),
		Package: proto.String("cvrdt"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("OneWayBoolean", field("flag", 1, boolType, false)),
			message("GCounter", field("id", 1, uint64Type, false), field("counts", 2, uint64Type, true)),
			message("PNCounter", field("id", 1, uint64Type, false),
				field("positive", 2, uint64Type, true), field("negative", 3, uint64Type, true)),
			message("GSet", field("values", 1, bytesType, true)),
			message("TwoPhaseSet", field("added", 1, bytesType, true), field("removed", 2, bytesType, true)),
			message("LWWRegister", field("value", 1, bytesType, false), field("timestamp", 2, sint64Type, false)),
		},
	}
	fd, err := protodesc.NewFile(fdp, nil)
	require.NoError(t, err)
	return fd
}

func decode(t *testing.T, fd protoreflect.FileDescriptor, name string, b []byte) *dynamicpb.Message {
	md := fd.Messages().ByName(protoreflect.Name(name))
	require.NotNil(t, md, name)
	msg := dynamicpb.NewMessage(md)
	require.NoError(t, proto.Unmarshal(b, msg))
	return msg
}

func get(msg *dynamicpb.Message, name string) protoreflect.Value {
	return msg.Get(msg.Descriptor().Fields().ByName(protoreflect.Name(name)))
}

func set(msg *dynamicpb.Message, name string, v protoreflect.Value) {
	msg.Set(msg.Descriptor().Fields().ByName(protoreflect.Name(name)), v)
}

func uints(l protoreflect.List) []uint64 {
	res := []uint64{}
	for i := 0; i < l.Len(); i++ {
		res = append(res, l.Get(i).Uint())
	}
	return res
}

func byteStrings(l protoreflect.List) []string {
	var res []string
	for i := 0; i < l.Len(); i++ {
		res = append(res, string(l.Get(i).Bytes()))
	}
	return res
}

func TestReadableByProtobuf(t *testing.T) {
	fd := schema(t)

	msg := decode(t, fd, "OneWayBoolean", cvrdt.MarshalOneWayBoolean(true))
	assert.True(t, get(msg, "flag").Bool())

	msg = decode(t, fd, "GCounter", cvrdt.MarshalGCounter(cvrdt.GCounterPayload{ID: 2, Counts: []uint64{1, 0, 300}}))
	assert.Equal(t, uint64(2), get(msg, "id").Uint())
	assert.Equal(t, []uint64{1, 0, 300}, uints(get(msg, "counts").List()))

	msg = decode(t, fd, "PNCounter", cvrdt.MarshalPNCounter(cvrdt.PNCounterPayload{
		ID: 1, Positive: []uint64{4, 5}, Negative: []uint64{0, 6},
	}))
	assert.Equal(t, uint64(1), get(msg, "id").Uint())
	assert.Equal(t, []uint64{4, 5}, uints(get(msg, "positive").List()))
	assert.Equal(t, []uint64{0, 6}, uints(get(msg, "negative").List()))

	b, err := cvrdt.MarshalGSet(mapset.NewThreadUnsafeSet("b", "a"), cvrdt.ElementCodec[string]{})
	require.NoError(t, err)
	msg = decode(t, fd, "GSet", b)
	assert.Equal(t, []string{`"a"`, `"b"`}, byteStrings(get(msg, "values").List()))

	b, err = cvrdt.MarshalTwoPhaseSet(cvrdt.TwoPhaseSetPayload[string]{
		Added:   mapset.NewThreadUnsafeSet("x", "y"),
		Removed: mapset.NewThreadUnsafeSet("y"),
	}, cvrdt.ElementCodec[string]{})
	require.NoError(t, err)
	msg = decode(t, fd, "TwoPhaseSet", b)
	assert.Equal(t, []string{`"x"`, `"y"`}, byteStrings(get(msg, "added").List()))
	assert.Equal(t, []string{`"y"`}, byteStrings(get(msg, "removed").List()))

	b, err = cvrdt.MarshalLWWRegister(cvrdt.LWWRegisterPayload[string]{Value: "v", Timestamp: -3}, cvrdt.ElementCodec[string]{})
	require.NoError(t, err)
	msg = decode(t, fd, "LWWRegister", b)
	assert.Equal(t, `"v"`, string(get(msg, "value").Bytes()))
	assert.Equal(t, int64(-3), get(msg, "timestamp").Int())
}

func TestWrittenByProtobuf(t *testing.T) {
	fd := schema(t)

	msg := dynamicpb.NewMessage(fd.Messages().ByName("PNCounter"))
	set(msg, "id", protoreflect.ValueOfUint64(1))
	positive := msg.Mutable(msg.Descriptor().Fields().ByName("positive")).List()
	negative := msg.Mutable(msg.Descriptor().Fields().ByName("negative")).List()
	for _, v := range []uint64{7, 8} {
		positive.Append(protoreflect.ValueOfUint64(v))
		negative.Append(protoreflect.ValueOfUint64(v / 2))
	}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)
	payload, err := cvrdt.UnmarshalPNCounter(b)
	require.NoError(t, err)
	c, err := cvrdt.NewPNCounter(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(8), c.Query(cvrdt.Unit{}))

	// proto3 omits zero fields
	msg = dynamicpb.NewMessage(fd.Messages().ByName("GCounter"))
	counts := msg.Mutable(msg.Descriptor().Fields().ByName("counts")).List()
	counts.Append(protoreflect.ValueOfUint64(3))
	counts.Append(protoreflect.ValueOfUint64(0))
	b, err = proto.Marshal(msg)
	require.NoError(t, err)
	gPayload, err := cvrdt.UnmarshalGCounter(b)
	require.NoError(t, err)
	assert.Equal(t, cvrdt.GCounterPayload{ID: 0, Counts: []uint64{3, 0}}, gPayload)

	msg = dynamicpb.NewMessage(fd.Messages().ByName("LWWRegister"))
	set(msg, "value", protoreflect.ValueOfBytes([]byte(`"hello"`)))
	set(msg, "timestamp", protoreflect.ValueOfInt64(12345))
	b, err = proto.Marshal(msg)
	require.NoError(t, err)
	lPayload, err := cvrdt.UnmarshalLWWRegister(b, cvrdt.ElementCodec[string]{})
	require.NoError(t, err)
	assert.Equal(t, cvrdt.LWWRegisterPayload[string]{Value: "hello", Timestamp: 12345}, lPayload)
}
