package wire

import (
	"encoding/json"
	"fmt"
)

// MimeType is the serializer announced in every request frame.
const MimeType = "application/vnd.gremlin-v3.0+json"

// Server status codes.
const (
	StatusSuccess        = 200
	StatusNoContent      = 204
	StatusPartialContent = 206
)

// request is the eval message body.
type request struct {
	RequestID string      `json:"requestId"`
	Op        string      `json:"op"`
	Processor string      `json:"processor"`
	Args      requestArgs `json:"args"`
}

type requestArgs struct {
	Gremlin  string            `json:"gremlin"`
	Language string            `json:"language"`
	Aliases  map[string]string `json:"aliases"`
}

// encodeRequest builds a binary frame: one byte of mime length, the mime
// type, then the JSON body. The script's "g" is aliased to traversalSource.
func encodeRequest(requestID, traversalSource, traversal string) ([]byte, error) {
	body, err := json.Marshal(request{
		RequestID: requestID,
		Op:        "eval",
		Processor: "",
		Args: requestArgs{
			Gremlin:  traversal,
			Language: "gremlin-groovy",
			Aliases:  map[string]string{"g": traversalSource},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	frame := make([]byte, 0, 1+len(MimeType)+len(body))
	frame = append(frame, byte(len(MimeType)))
	frame = append(frame, MimeType...)
	frame = append(frame, body...)
	return frame, nil
}

// response is one server message. Data stays raw until the status is known.
type response struct {
	RequestID string `json:"requestId"`
	Status    struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

func decodeResponse(msg []byte) (*response, error) {
	var r response
	if err := json.Unmarshal(msg, &r); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &r, nil
}

// ResponseError is a non-success status returned by the server.
type ResponseError struct {
	Code    int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}
