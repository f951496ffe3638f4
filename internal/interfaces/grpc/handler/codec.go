package handler

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName은 gRPC content-subtype으로 쓰이는 코덱 이름입니다
const CodecName = "json"

// jsonCodec은 메시지를 JSON으로 직렬화하는 gRPC 코덱입니다
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
