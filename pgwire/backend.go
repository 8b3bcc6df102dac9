package pgwire

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

/*
An ErrorField is the single-character code that identifies one record of
an ErrorResponse. Codes the server may send that are not listed here are
carried through as-is; an unrecognized code never fails the decode.
*/
type ErrorField byte

// Known error-record field codes.
const (
	LocalizedSeverity ErrorField = 'S'
	Severity          ErrorField = 'V'
	Code              ErrorField = 'C'
	Message           ErrorField = 'M'
	Detail            ErrorField = 'D'
	Hint              ErrorField = 'H'
	Position          ErrorField = 'P'
	InternalPosition  ErrorField = 'p'
	InternalQuery     ErrorField = 'q'
	Where             ErrorField = 'W'
	SchemaName        ErrorField = 's'
	TableName         ErrorField = 't'
	ColumnName        ErrorField = 'c'
	DataTypeName      ErrorField = 'd'
	ConstraintName    ErrorField = 'n'
	File              ErrorField = 'F'
	Line              ErrorField = 'L'
	Routine           ErrorField = 'R'
)

func (f ErrorField) String() string {
	switch f {
	case LocalizedSeverity:
		return "LocalizedSeverity"
	case Severity:
		return "Severity"
	case Code:
		return "Code"
	case Message:
		return "Message"
	case Detail:
		return "Detail"
	case Hint:
		return "Hint"
	case Position:
		return "Position"
	case InternalPosition:
		return "InternalPosition"
	case InternalQuery:
		return "InternalQuery"
	case Where:
		return "Where"
	case SchemaName:
		return "SchemaName"
	case TableName:
		return "TableName"
	case ColumnName:
		return "ColumnName"
	case DataTypeName:
		return "DataTypeName"
	case ConstraintName:
		return "ConstraintName"
	case File:
		return "File"
	case Line:
		return "Line"
	case Routine:
		return "Routine"
	default:
		return fmt.Sprintf("ErrorField(%c)", byte(f))
	}
}

/*
ReadyStatus is the transaction status byte carried by a ReadyForQuery
message.
*/
type ReadyStatus byte

const (
	StatusIdle              ReadyStatus = 'I'
	StatusTransaction       ReadyStatus = 'T'
	StatusFailedTransaction ReadyStatus = 'E'
)

func (s ReadyStatus) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusTransaction:
		return "Transaction"
	case StatusFailedTransaction:
		return "FailedTransaction"
	default:
		return fmt.Sprintf("ReadyStatus(%c)", byte(s))
	}
}

/*
A BackendMessage is a single decoded message from the server. The concrete
types below form a closed set; anything the decoder does not recognize
lands in UnknownMessage rather than failing.
*/
type BackendMessage interface {
	fmt.Stringer
	backendMessage()
}

// AuthenticationOk reports that authentication has completed.
type AuthenticationOk struct{}

// AuthenticationCleartextPassword asks the client to send its password in
// the clear.
type AuthenticationCleartextPassword struct{}

// AuthenticationSASL lists the SASL mechanisms the server offers, in
// server preference order. Only the enumeration is decoded; no exchange
// is attempted.
type AuthenticationSASL struct {
	Mechanisms []string
}

// ErrorResponse carries the server's error report as a field map. Field
// codes are unique within one response and insertion order carries no
// meaning.
type ErrorResponse struct {
	Fields map[ErrorField]string
}

// BackendKeyData carries the cancellation key for this session.
type BackendKeyData struct {
	ProcessID uint32
	SecretKey int32
}

// ReadyForQuery reports that the server is ready for the next query.
type ReadyForQuery struct {
	Status ReadyStatus
}

// ParameterStatus reports a server run-time parameter setting.
type ParameterStatus struct {
	Name  string
	Value string
}

// UnknownMessage preserves any message with a tag this client does not
// handle, so that new server message types never break the session.
type UnknownMessage struct {
	Prefix  byte
	Payload []byte
}

func (AuthenticationOk) backendMessage()                {}
func (AuthenticationCleartextPassword) backendMessage() {}
func (AuthenticationSASL) backendMessage()              {}
func (ErrorResponse) backendMessage()                   {}
func (BackendKeyData) backendMessage()                  {}
func (ReadyForQuery) backendMessage()                   {}
func (ParameterStatus) backendMessage()                 {}
func (UnknownMessage) backendMessage()                  {}

func (AuthenticationOk) String() string {
	return "AuthenticationOk"
}

func (AuthenticationCleartextPassword) String() string {
	return "AuthenticationCleartextPassword"
}

func (m AuthenticationSASL) String() string {
	return fmt.Sprintf("AuthenticationSASL mechanisms=%s", strings.Join(m.Mechanisms, ","))
}

func (m ErrorResponse) String() string {
	severity := m.Fields[Severity]
	if severity == "" {
		severity = m.Fields[LocalizedSeverity]
	}
	return fmt.Sprintf("ErrorResponse %s %s: %s",
		severity, m.Fields[Code], m.Fields[Message])
}

func (m BackendKeyData) String() string {
	return fmt.Sprintf("BackendKeyData pid=%d", m.ProcessID)
}

func (m ReadyForQuery) String() string {
	return fmt.Sprintf("ReadyForQuery %s", m.Status)
}

func (m ParameterStatus) String() string {
	return fmt.Sprintf("ParameterStatus %s=%s", m.Name, m.Value)
}

func (m UnknownMessage) String() string {
	return fmt.Sprintf("Unknown prefix=%c length=%d", m.Prefix, len(m.Payload))
}

// Authentication sub-type codes carried in the first four payload bytes
// of an 'R' message.
const (
	authOk                = 0
	authCleartextPassword = 3
	authSASL              = 10
)

/*
DecodeBackendMessage classifies one message body. The caller has already
read the tag byte and the length field and handed over exactly
length-4 payload bytes, so this is a pure function of the
(tag, length, payload) triple. Unrecognized tags, and known tags whose
shape does not match, decode to UnknownMessage; only a structurally
broken body of a recognized shape is a ParseError.
*/
func DecodeBackendMessage(tag byte, payload []byte) (BackendMessage, error) {
	switch PgMessageType(tag) {
	case AuthenticationResponse:
		return decodeAuthentication(tag, payload)
	case ErrorResponseMsg:
		return decodeErrorResponse(tag, payload)
	case BackEndKeyData:
		if len(payload) != 8 {
			break
		}
		return BackendKeyData{
			ProcessID: networkByteOrder.Uint32(payload[:4]),
			SecretKey: int32(networkByteOrder.Uint32(payload[4:8])),
		}, nil
	case ReadyForQueryMsg:
		if len(payload) != 1 {
			break
		}
		switch status := ReadyStatus(payload[0]); status {
		case StatusIdle, StatusTransaction, StatusFailedTransaction:
			return ReadyForQuery{Status: status}, nil
		default:
			return nil, parseErrorf(tag, "invalid status byte %q", payload[0])
		}
	case ParameterStatusMsg:
		return decodeParameterStatus(tag, payload)
	}
	return UnknownMessage{Prefix: tag, Payload: payload}, nil
}

func decodeAuthentication(tag byte, payload []byte) (BackendMessage, error) {
	if len(payload) < 4 {
		return UnknownMessage{Prefix: tag, Payload: payload}, nil
	}
	switch networkByteOrder.Uint32(payload[:4]) {
	case authCleartextPassword:
		if len(payload) == 4 {
			return AuthenticationCleartextPassword{}, nil
		}
	case authOk:
		if len(payload) == 4 {
			return AuthenticationOk{}, nil
		}
	case authSASL:
		// Mechanism names sit between the sub-type code and the trailing
		// double null.
		if len(payload) < 6 {
			return nil, parseErrorf(tag, "SASL mechanism list too short")
		}
		list := payload[4 : len(payload)-2]
		if !utf8.Valid(list) {
			return nil, parseErrorf(tag, "SASL mechanism list is not valid UTF-8")
		}
		return AuthenticationSASL{
			Mechanisms: strings.Split(string(list), "\x00"),
		}, nil
	}
	return UnknownMessage{Prefix: tag, Payload: payload}, nil
}

func decodeErrorResponse(tag byte, payload []byte) (BackendMessage, error) {
	if len(payload) < 2 {
		return nil, parseErrorf(tag, "missing terminator")
	}
	body := payload[:len(payload)-2]
	if !utf8.Valid(body) {
		return nil, parseErrorf(tag, "error fields are not valid UTF-8")
	}

	fields := make(map[ErrorField]string)
	for _, record := range strings.Split(string(body), "\x00") {
		if record == "" {
			continue
		}
		fields[ErrorField(record[0])] = record[1:]
	}
	return ErrorResponse{Fields: fields}, nil
}

func decodeParameterStatus(tag byte, payload []byte) (BackendMessage, error) {
	sep := bytes.IndexByte(payload, 0)
	if sep < 0 || len(payload) < sep+2 {
		return nil, parseErrorf(tag, "missing null separator")
	}
	name := payload[:sep]
	value := payload[sep+1 : len(payload)-1]
	if !utf8.Valid(name) || !utf8.Valid(value) {
		return nil, parseErrorf(tag, "parameter is not valid UTF-8")
	}
	return ParameterStatus{
		Name:  string(name),
		Value: string(value),
	}, nil
}
