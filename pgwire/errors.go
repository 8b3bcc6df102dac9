package pgwire

import "fmt"

/*
A ParseError means a message frame was read off the wire intact but its
body could not be understood: malformed UTF-8, a missing null separator,
an invalid status byte, or a length field too small to cover its own
header. It is always distinct from an I/O error on the underlying stream.
*/
type ParseError struct {
	Tag    byte
	Reason string
}

func (e *ParseError) Error() string {
	if e.Tag == 0 {
		return fmt.Sprintf("parse error: %s", e.Reason)
	}
	return fmt.Sprintf("parse error in %s message: %s", PgMessageType(e.Tag), e.Reason)
}

func parseErrorf(tag byte, format string, args ...interface{}) error {
	return &ParseError{Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

/*
A ProtocolError means the server broke the handshake contract, e.g. by
answering the SSL negotiation with a byte other than 'S'. Always fatal.
*/
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}
