package pgwire

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// Credentials the mock accepts.
	MockUserName     = "mock"
	MockDatabaseName = "turtle"
	MockPassword     = "sesame"
)

/*
A MockServer is a server that implements enough of the Postgres wire
protocol to exercise the client: SSL negotiation, TLS upgrade with an
ephemeral self-signed certificate, cleartext-password login, and the
simple query exchange. It records every frontend message it receives so
tests can assert on the exact sequence.
*/
type MockServer struct {
	listener  net.Listener
	tlsConfig *tls.Config

	// RejectSSL makes the server answer the SSL request with 'N'.
	// Set before the client connects.
	RejectSSL bool

	mu       sync.Mutex
	received []string
}

/*
NewMockServer starts a new server in the current process, listening on the
specified port. Port 0 picks a free port; use Address to find it.
*/
func NewMockServer(port int) (*MockServer, error) {
	listener, err := net.ListenTCP("tcp", &net.TCPAddr{
		Port: port,
	})
	if err != nil {
		return nil, err
	}

	cert, err := selfSignedCert()
	if err != nil {
		listener.Close()
		return nil, err
	}

	s := &MockServer{
		listener: listener,
		tlsConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
		},
	}
	go s.acceptLoop()

	return s, nil
}

/*
Address returns the listen address in host:port format.
*/
func (m *MockServer) Address() string {
	return m.listener.Addr().String()
}

/*
Port returns the port the server is listening on.
*/
func (m *MockServer) Port() int {
	return m.listener.Addr().(*net.TCPAddr).Port
}

/*
Stop stops the server listening for new connections.
*/
func (m *MockServer) Stop() {
	m.listener.Close()
}

/*
Received returns the frontend messages seen so far, in arrival order.
*/
func (m *MockServer) Received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.received))
	copy(out, m.received)
	return out
}

func (m *MockServer) record(msg string) {
	m.mu.Lock()
	m.received = append(m.received, msg)
	m.mu.Unlock()
}

func (m *MockServer) acceptLoop() {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		go m.connectLoop(conn)
	}
}

func (m *MockServer) connectLoop(c net.Conn) {
	defer c.Close()

	sslReq, err := readMockMessage(c, true)
	if err != nil {
		log.Errorf("Error reading SSL request: %s", err)
		return
	}
	hi, _ := sslReq.ReadInt16()
	lo, _ := sslReq.ReadInt16()
	if hi != sslMagicHigh || lo != sslMagicLow {
		log.Errorf("Invalid SSL negotiation codes %d %d", hi, lo)
		return
	}
	m.record("SSLRequest")

	if m.RejectSSL {
		c.Write([]byte{'N'})
		return
	}
	c.Write([]byte{'S'})

	tc := tls.Server(c, m.tlsConfig)
	if err = tc.Handshake(); err != nil {
		log.Errorf("Mock TLS handshake failed: %s", err)
		return
	}
	c = tc

	startup, err := readMockMessage(c, true)
	if err != nil {
		log.Errorf("Error reading startup message: %s", err)
		return
	}

	major, _ := startup.ReadInt16()
	minor, _ := startup.ReadInt16()
	if major != protocolMajor || minor != protocolMinor {
		sendError(c, fmt.Sprintf("Invalid protocol version %d.%d", major, minor))
		return
	}

	var paramName, paramVal string
	for {
		paramName, err = startup.ReadString()
		if err != nil {
			return
		}
		if paramName == "" {
			break
		}
		paramVal, err = startup.ReadString()
		if err != nil {
			return
		}

		if paramName == "user" && paramVal != MockUserName {
			sendError(c, fmt.Sprintf("Invalid user name %s", paramVal))
			return
		}
		if paramName == "database" && paramVal != MockDatabaseName {
			sendError(c, fmt.Sprintf("Invalid database name %s", paramVal))
			return
		}
	}
	m.record("StartupMessage")

	out := NewOutputMessage(byte(AuthenticationResponse))
	out.WriteInt32(authCleartextPassword)
	c.Write(out.Encode())

	pw, err := readMockMessage(c, false)
	if err != nil {
		return
	}
	if pw.Type() != byte(PasswordMessageType) {
		sendError(c, fmt.Sprintf("Expected password, got %s", PgMessageType(pw.Type())))
		return
	}
	password, _ := pw.ReadString()
	if password != MockPassword {
		sendError(c, "Invalid password")
		return
	}
	m.record("PasswordMessage")

	out = NewOutputMessage(byte(AuthenticationResponse))
	out.WriteInt32(authOk)
	c.Write(out.Encode())

	out = NewOutputMessage(byte(BackEndKeyData))
	out.WriteInt32(4711)
	out.WriteInt32(42)
	c.Write(out.Encode())

	out = NewOutputMessage(byte(ParameterStatusMsg))
	out.WriteString("server_version")
	out.WriteString("9.6.0")
	c.Write(out.Encode())

	sendReady(c)
	m.readLoop(c)
}

func (m *MockServer) readLoop(c net.Conn) {
	for {
		msg, err := readMockMessage(c, false)
		if err != nil {
			return
		}

		switch msg.Type() {
		case byte(QueryMsg):
			query, _ := msg.ReadString()
			m.record(fmt.Sprintf("SimpleQuery %q", query))
			sendReady(c)
		case byte(TerminateMsg):
			m.record("Terminate")
			return
		default:
			sendError(c, fmt.Sprintf("Invalid message %s", PgMessageType(msg.Type())))
			sendReady(c)
		}
	}
}

func readMockMessage(c net.Conn, isStartup bool) (*InputMessage, error) {
	var hdr []byte
	if isStartup {
		hdr = make([]byte, 4)
	} else {
		hdr = make([]byte, 5)
	}

	_, err := io.ReadFull(c, hdr)
	if err != nil {
		return nil, err
	}

	hdrBuf := bytes.NewBuffer(hdr)
	var msgType byte

	if !isStartup {
		msgType, err = hdrBuf.ReadByte()
		if err != nil {
			return nil, err
		}
	}

	var msgLen int32
	err = binary.Read(hdrBuf, networkByteOrder, &msgLen)
	if err != nil {
		return nil, err
	}

	if msgLen < 4 {
		return nil, fmt.Errorf("invalid message length %d", msgLen)
	}

	bodBuf := make([]byte, msgLen-4)
	_, err = io.ReadFull(c, bodBuf)
	if err != nil {
		return nil, err
	}

	return NewInputMessage(msgType, bodBuf), nil
}

func sendError(c net.Conn, msg string) {
	out := NewOutputMessage(byte(ErrorResponseMsg))
	out.WriteByte(byte(LocalizedSeverity))
	out.WriteString("FATAL")
	out.WriteByte(byte(Message))
	out.WriteString(msg)
	out.WriteByte(0)
	c.Write(out.Encode())
}

func sendReady(c net.Conn) {
	out := NewOutputMessage(byte(ReadyForQueryMsg))
	out.WriteByte(byte(StatusIdle))
	c.Write(out.Encode())
}

func selfSignedCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "mockpgserver"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}, nil
}
