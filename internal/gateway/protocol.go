package gateway

// clientMessage is a JSON text frame from the browser. Binary frames carry
// raw PCM audio and never reach this type. Unknown Type values are ignored.
type clientMessage struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`      // base64 payload for image frames
	MIMEType string `json:"mime_type,omitempty"` // defaults to image/jpeg
}

type textOutputMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type audioOutputMessage struct {
	Type string `json:"type"`
	Data string `json:"data"` // base64 PCM
}

type toolCallMessage struct {
	Type         string         `json:"type"`
	FunctionName string         `json:"function_name"`
	Args         map[string]any `json:"args"`
}

type inventoryUpdatedMessage struct {
	Type  string `json:"type"`
	Total int    `json:"total"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// signalMessage covers the payload-free notifications: turn_complete,
// interrupted, setup_complete.
type signalMessage struct {
	Type string `json:"type"`
}
