package pgwire

import "fmt"

/*
PgMessageType is the one-byte type of a postgres message.
*/
type PgMessageType byte

// Message types this client sends or understands. Startup-phase messages
// (SSL request, startup) have no type byte and do not appear here.
const (
	AuthenticationResponse PgMessageType = 'R'
	BackEndKeyData         PgMessageType = 'K'
	ParameterStatusMsg     PgMessageType = 'S'
	ErrorResponseMsg       PgMessageType = 'E'
	QueryMsg               PgMessageType = 'Q'
	ReadyForQueryMsg       PgMessageType = 'Z'
	TerminateMsg           PgMessageType = 'X'
	PasswordMessageType    PgMessageType = 'p'
)

func (t PgMessageType) String() string {
	// Unfortunately "stringer" doesn't seem to be able to generate this
	switch t {
	case AuthenticationResponse:
		return "AuthenticationResponse"
	case BackEndKeyData:
		return "BackEndKeyData"
	case ParameterStatusMsg:
		return "ParameterStatus"
	case ErrorResponseMsg:
		return "ErrorResponse"
	case QueryMsg:
		return "Query"
	case ReadyForQueryMsg:
		return "ReadyForQuery"
	case TerminateMsg:
		return "Terminate"
	case PasswordMessageType:
		return "PasswordMessage"
	default:
		return fmt.Sprintf("PgMessageType(%d)", byte(t))
	}
}
