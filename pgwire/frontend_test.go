package pgwire

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// frameLength reads the four-byte length field at the given offset.
func frameLength(buf []byte, offset int) int32 {
	var msgLen int32
	err := binary.Read(bytes.NewBuffer(buf[offset:offset+4]), networkByteOrder, &msgLen)
	Expect(err).Should(Succeed())
	return msgLen
}

var _ = Describe("Frontend Messages", func() {
	It("SSLRequest carries the magic codes and no tag", func() {
		buf := SSLRequest{}.Encode()
		Expect(buf).Should(Equal([]byte{
			0, 0, 0, 9, // length, covering itself plus the payload
			0x04, 0xd2, // 1234
			0x16, 0x2f, // 5679
			0, // empty terminator field
		}))
	})

	It("StartupMessage carries the protocol version and parameter list", func() {
		buf := StartupMessage{User: "mock", Database: "turtle"}.Encode()

		msgLen := frameLength(buf, 0)
		Expect(int(msgLen)).Should(Equal(len(buf)))

		body := buf[4:]
		Expect(body[:4]).Should(Equal([]byte{0, 3, 0, 0}))

		im := NewInputMessage(0, body[4:])
		for _, expected := range []string{"user", "mock", "database", "turtle", ""} {
			s, err := im.ReadString()
			Expect(err).Should(Succeed())
			Expect(s).Should(Equal(expected))
		}
	})

	It("PasswordMessage is tagged 'p' and null-terminated", func() {
		buf := PasswordMessage{Password: "sesame"}.Encode()
		Expect(buf[0]).Should(BeEquivalentTo('p'))
		Expect(int(frameLength(buf, 1))).Should(Equal(len(buf) - 1))
		Expect(buf[5:]).Should(Equal([]byte("sesame\x00\x00")))
	})

	It("SimpleQuery is tagged 'Q'", func() {
		buf := SimpleQuery{Query: "SELECT 1"}.Encode()
		Expect(buf[0]).Should(BeEquivalentTo('Q'))
		Expect(int(frameLength(buf, 1))).Should(Equal(len(buf) - 1))
		Expect(buf[5:]).Should(Equal([]byte("SELECT 1\x00")))
	})

	It("Terminate has an empty body", func() {
		buf := Terminate{}.Encode()
		Expect(buf).Should(Equal([]byte{'X', 0, 0, 0, 4}))
	})

	It("Encoding is deterministic", func() {
		m := StartupMessage{User: "alice", Database: "things"}
		Expect(m.Encode()).Should(Equal(m.Encode()))
	})

	It("The startup frame round-trips through the mock reader", func() {
		// The same frame structure the mock server consumes: length,
		// version, then alternating key/value strings.
		buf := StartupMessage{User: "alice", Database: "things"}.Encode()
		im := NewInputMessage(0, buf[4:])

		major, err := im.ReadInt16()
		Expect(err).Should(Succeed())
		Expect(major).Should(BeEquivalentTo(3))
		minor, err := im.ReadInt16()
		Expect(err).Should(Succeed())
		Expect(minor).Should(BeEquivalentTo(0))

		params := map[string]string{}
		for {
			name, err := im.ReadString()
			Expect(err).Should(Succeed())
			if name == "" {
				break
			}
			val, err := im.ReadString()
			Expect(err).Should(Succeed())
			params[name] = val
		}
		Expect(params).Should(Equal(map[string]string{
			"user":     "alice",
			"database": "things",
		}))
	})
})
