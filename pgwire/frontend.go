package pgwire

import "fmt"

// Magic codes for the SSL negotiation request, and the protocol version
// sent in the startup message. These are fixed by the wire protocol and
// not configurable.
const (
	sslMagicHigh = 1234
	sslMagicLow  = 5679

	protocolMajor = 3
	protocolMinor = 0
)

/*
A FrontendMessage is a single message sent from the client to the server.
Encoding is total: any well-formed value produces a deterministic,
length-prefixed frame.
*/
type FrontendMessage interface {
	fmt.Stringer
	// Encode returns the full wire frame, including header.
	Encode() []byte
}

/*
SSLRequest asks the server to upgrade the connection to TLS. It is sent
before the startup message, on the plaintext stream, and carries no type
byte.
*/
type SSLRequest struct{}

// Encode emits the two magic negotiation codes plus the empty terminator
// field.
func (SSLRequest) Encode() []byte {
	om := NewStartupMessage()
	om.WriteInt16(sslMagicHigh)
	om.WriteInt16(sslMagicLow)
	om.WriteString("")
	return om.Encode()
}

func (SSLRequest) String() string {
	return "SSLRequest"
}

/*
StartupMessage identifies the user and database for the session. Like the
SSL request it carries no type byte.
*/
type StartupMessage struct {
	User     string
	Database string
}

// Encode emits the protocol version followed by the key/value parameter
// list and its empty terminator field.
func (m StartupMessage) Encode() []byte {
	om := NewStartupMessage()
	om.WriteInt16(protocolMajor)
	om.WriteInt16(protocolMinor)
	om.WriteString("user")
	om.WriteString(m.User)
	om.WriteString("database")
	om.WriteString(m.Database)
	om.WriteString("")
	return om.Encode()
}

func (m StartupMessage) String() string {
	return fmt.Sprintf("StartupMessage user=%s database=%s", m.User, m.Database)
}

/*
PasswordMessage answers a cleartext password request.
*/
type PasswordMessage struct {
	Password string
}

func (m PasswordMessage) Encode() []byte {
	om := NewOutputMessage(byte(PasswordMessageType))
	om.WriteString(m.Password)
	om.WriteString("")
	return om.Encode()
}

func (m PasswordMessage) String() string {
	// The credential itself stays out of the logs.
	return "PasswordMessage"
}

/*
SimpleQuery submits one SQL string over the simple query protocol.
*/
type SimpleQuery struct {
	Query string
}

func (m SimpleQuery) Encode() []byte {
	om := NewOutputMessage(byte(QueryMsg))
	om.WriteString(m.Query)
	return om.Encode()
}

func (m SimpleQuery) String() string {
	return fmt.Sprintf("SimpleQuery %q", m.Query)
}

/*
Terminate tells the server the session is over. Sent on a best-effort
basis when the connection closes.
*/
type Terminate struct{}

func (Terminate) Encode() []byte {
	om := NewOutputMessage(byte(TerminateMsg))
	return om.Encode()
}

func (Terminate) String() string {
	return "Terminate"
}
