package core

// Decoder turns a webhook request body into an inbound message.
// ok is false for well-formed updates that carry no text message
// (edits, callbacks, member changes); those are acknowledged but not dispatched.
type Decoder interface {
	Decode(body []byte) (msg InboundMessage, ok bool, err error)
}
