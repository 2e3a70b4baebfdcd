package grpcserver

import "encoding/json"

// JSONCodec marshals the API messages. Registered on the server with
// grpc.ForceServerCodec; clients select it via the same codec or the
// "json" content-subtype.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string {
	return "json"
}
