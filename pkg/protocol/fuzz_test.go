package protocol

import (
	"reflect"
	"testing"
)

func FuzzJSONCodec(f *testing.F) {
	for _, seed := range []string{
		`{"ref":"1","topic":"lv:page","event":"phx_join","payload":{"params":{"section":"general"}}}`,
		`{"ref":"2","topic":"lv:abc","event":"nav","payload":{"section":"methods"}}`,
		`{"ref":"3","topic":"lv:abc","event":"pointerdown","payload":{"id":"link-0"}}`,
		`{"topic":"lv:abc","event":"diff","payload":{"v":2,"h":{"links":"<a></a>"}}}`,
		`{"ref":null,"topic":"phoenix","event":"heartbeat"}`,
		`{"ref": 123}`,
		`{}`, `[]`, `null`, ``, `{malformed`,
	} {
		f.Add([]byte(seed))
	}
	fuzzRoundTrip(f, NewJSONCodec())
}

func FuzzPhoenixCodec(f *testing.F) {
	for _, seed := range []string{
		`["1","1","lv:page","phx_join",{"params":{"section":"general"}}]`,
		`[null,"4","lv:abc","click",{"id":"link-1"}]`,
		`[null,null,"lv:abc","navigate",{"to":"/docs/core/cache"}]`,
		`["","","","",{}]`,
		`[]`, `[1,2,3,4,5]`, `{"ref":"1"}`,
	} {
		f.Add([]byte(seed))
	}
	fuzzRoundTrip(f, NewPhoenixCodec())
}

func FuzzMsgPackCodec(f *testing.F) {
	codec := NewMsgPackCodec()
	for _, msg := range []*Message{
		JoinMessage("1", "lv:page", map[string]any{"params": map[string]any{"section": "general"}}),
		EventMessage("2", "lv:abc", "pointerup", map[string]any{"id": "link-0"}),
		HeartbeatMessage("3"),
	} {
		data, err := codec.Encode(msg)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(data)
	}
	f.Add([]byte{0xc1})
	f.Add([]byte{})
	fuzzRoundTrip(f, codec)
}

// fuzzRoundTrip checks that whatever codec accepts survives an encode and
// a second decode unchanged.
func fuzzRoundTrip(f *testing.F, codec Codec) {
	f.Fuzz(func(t *testing.T, data []byte) {
		first, err := codec.Decode(data)
		if err != nil {
			return
		}
		out, err := codec.Encode(first)
		if err != nil {
			return
		}
		second, err := codec.Decode(out)
		if err != nil {
			t.Fatalf("re-decoding %q: %v", out, err)
		}
		if first.Ref != second.Ref || first.JoinRef != second.JoinRef ||
			first.Topic != second.Topic || first.Event != second.Event {
			t.Fatalf("header mismatch: %+v != %+v", first, second)
		}
		if len(first.Payload) != len(second.Payload) {
			t.Fatalf("payload size mismatch: %v != %v", first.Payload, second.Payload)
		}
		for k, v := range first.Payload {
			if !reflect.DeepEqual(v, second.Payload[k]) {
				t.Fatalf("payload %q: %#v != %#v", k, v, second.Payload[k])
			}
		}
	})
}
