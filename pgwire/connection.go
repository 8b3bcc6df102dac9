package pgwire

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

/*
A PgConnection represents one connection to the database. It owns the
underlying stream for its whole lifetime: first the plaintext socket for
the SSL negotiation, then the TLS stream for everything after.
*/
type PgConnection struct {
	conn net.Conn
}

/*
Connect dials the server, performs the plaintext SSL negotiation, and
upgrades the stream to TLS in place. The server must answer the SSL
request with a single 'S' byte; any other answer is a protocol violation
and the connection is torn down.
*/
func Connect(host string, port int, tlsConfig *tls.Config) (*PgConnection, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to server")
	}

	success := false
	defer func() {
		if !success {
			conn.Close()
		}
	}()

	c := &PgConnection{conn: conn}

	err = c.WriteMessage(SSLRequest{})
	if err != nil {
		return nil, err
	}

	ack := make([]byte, 1)
	_, err = io.ReadFull(conn, ack)
	if err != nil {
		return nil, errors.Wrap(err, "reading SSL negotiation response")
	}
	if ack[0] != 'S' {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("unexpected SSL negotiation response %q", ack[0]),
		}
	}

	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: host}
	}
	tc := tls.Client(conn, tlsConfig)
	err = tc.Handshake()
	if err != nil {
		return nil, errors.Wrap(err, "TLS handshake")
	}
	log.Debugf("Connection to %s:%d upgraded to TLS", host, port)

	c.conn = tc
	success = true
	return c, nil
}

/*
Close sends a Terminate message on a best-effort basis and closes the
socket.
*/
func (c *PgConnection) Close() {
	if c.conn != nil {
		c.WriteMessage(Terminate{})
		log.Debug("Closing TCP connection")
		c.conn.Close()
		c.conn = nil
	}
}

/*
WriteMessage sends the specified message to the server, and does not wait
to see what comes back. The message is recorded before it goes out.
*/
func (c *PgConnection) WriteMessage(m FrontendMessage) error {
	log.Debugf("--> %s", m)
	_, err := c.conn.Write(m.Encode())
	if err != nil {
		return errors.Wrap(err, "writing message")
	}
	return nil
}

/*
ReadBackendMessage reads exactly one message from the stream -- one tag
byte, one four-byte length, then length-4 payload bytes, never more --
and decodes it. A short read is an I/O error; a body that cannot be
understood is a ParseError. The message is recorded before it is
returned.
*/
func (c *PgConnection) ReadBackendMessage() (BackendMessage, error) {
	hdr := make([]byte, 5)
	_, err := io.ReadFull(c.conn, hdr)
	if err != nil {
		return nil, errors.Wrap(err, "reading message header")
	}

	tag := hdr[0]
	msgLen := int32(networkByteOrder.Uint32(hdr[1:5]))
	if msgLen < 4 {
		return nil, parseErrorf(tag, "invalid message length %d", msgLen)
	}

	payload := make([]byte, msgLen-4)
	_, err = io.ReadFull(c.conn, payload)
	if err != nil {
		return nil, errors.Wrap(err, "reading message body")
	}

	msg, err := DecodeBackendMessage(tag, payload)
	if err != nil {
		return nil, err
	}
	log.Debugf("<-- %s", msg)
	return msg, nil
}
