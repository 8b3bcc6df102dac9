package pgwire

import (
	"crypto/tls"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Session", func() {
	var mock *MockServer

	insecure := &tls.Config{InsecureSkipVerify: true}

	BeforeEach(func() {
		var err error
		mock, err = NewMockServer(0)
		Expect(err).Should(Succeed())
	})

	AfterEach(func() {
		mock.Stop()
	})

	It("drives the whole handshake and query exchange", func() {
		conn, err := Connect("127.0.0.1", mock.Port(), insecure)
		Expect(err).Should(Succeed())
		defer conn.Close()

		s := NewSession(conn, MockUserName, MockDatabaseName, MockPassword, "SELECT 1")
		Expect(s.Run()).Should(Succeed())

		// Exactly these four messages, in exactly this order.
		Eventually(mock.Received).Should(Equal([]string{
			"SSLRequest",
			"StartupMessage",
			"PasswordMessage",
			`SimpleQuery "SELECT 1"`,
		}))
	})

	It("treats an SSL refusal as a protocol violation", func() {
		mock.RejectSSL = true

		_, err := Connect("127.0.0.1", mock.Port(), insecure)
		Expect(err).Should(HaveOccurred())
		Expect(err).Should(BeAssignableToTypeOf(&ProtocolError{}))
	})

	It("fails the session when the password is wrong", func() {
		conn, err := Connect("127.0.0.1", mock.Port(), insecure)
		Expect(err).Should(Succeed())
		defer conn.Close()

		s := NewSession(conn, MockUserName, MockDatabaseName, "letmein", "SELECT 1")
		// The mock reports the error and hangs up; the driver surfaces
		// the resulting read failure rather than retrying.
		Expect(s.Run()).ShouldNot(Succeed())
	})

	It("fails the session for an unknown database", func() {
		conn, err := Connect("127.0.0.1", mock.Port(), insecure)
		Expect(err).Should(Succeed())
		defer conn.Close()

		s := NewSession(conn, MockUserName, "nonesuch", MockPassword, "SELECT 1")
		Expect(s.Run()).ShouldNot(Succeed())
	})

	It("fails to connect when nobody is listening", func() {
		port := mock.Port()
		mock.Stop()

		_, err := Connect("127.0.0.1", port, insecure)
		Expect(err).Should(HaveOccurred())
	})
})
