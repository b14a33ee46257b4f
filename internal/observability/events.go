package observability

// EventEnvelope wraps a conversation websocket lifecycle event
// (ws_connect, ws_disconnect, ws_error) for the ws_events stream.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// BuildHeaders threads request and trace correlation ids onto the envelope.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
