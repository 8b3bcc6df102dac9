package pgwire

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Encoding Tests", func() {
	It("Int Field", func() {
		om := NewOutputMessage('a')
		om.WriteInt32(123)
		buf := om.Encode()
		Expect(len(buf)).Should(Equal(9))

		ir := bytes.NewBuffer(buf)
		typ, err := ir.ReadByte()
		Expect(err).Should(Succeed())
		Expect(typ).Should(BeEquivalentTo('a'))

		var len int32
		err = binary.Read(ir, networkByteOrder, &len)
		Expect(err).Should(Succeed())
		Expect(len).Should(BeEquivalentTo(8))

		im := NewInputMessage('a', buf[5:])
		val, err := im.ReadInt32()
		Expect(err).Should(Succeed())
		Expect(val).Should(BeEquivalentTo(123))
		Expect(im.Type()).Should(BeEquivalentTo('a'))
	})

	It("Int16 Field", func() {
		om := NewOutputMessage('a')
		om.WriteInt16(1234)
		buf := om.Encode()
		Expect(len(buf)).Should(Equal(7))

		im := NewInputMessage('a', buf[5:])
		val, err := im.ReadInt16()
		Expect(err).Should(Succeed())
		Expect(val).Should(BeEquivalentTo(1234))
	})

	It("String Field", func() {
		msg := "Hello, World!"
		om := NewOutputMessage('b')
		om.WriteString(msg)
		buf := om.Encode()
		Expect(len(buf)).Should(Equal(19))

		ir := bytes.NewBuffer(buf)
		typ, err := ir.ReadByte()
		Expect(err).Should(Succeed())
		Expect(typ).Should(BeEquivalentTo('b'))

		var len int32
		err = binary.Read(ir, networkByteOrder, &len)
		Expect(err).Should(Succeed())
		Expect(len).Should(BeEquivalentTo(18))

		im := NewInputMessage('b', buf[5:])
		val, err := im.ReadString()
		Expect(err).Should(Succeed())
		Expect(val).Should(Equal(msg))
	})

	It("Empty String Field", func() {
		om := NewOutputMessage('b')
		om.WriteString("")
		buf := om.Encode()
		Expect(len(buf)).Should(Equal(6))

		im := NewInputMessage('b', buf[5:])
		val, err := im.ReadString()
		Expect(err).Should(Succeed())
		Expect(val).Should(Equal(""))
	})

	It("Startup-phase messages have no type byte", func() {
		om := NewStartupMessage()
		om.WriteInt32(99)
		buf := om.Encode()
		Expect(len(buf)).Should(Equal(8))

		ir := bytes.NewBuffer(buf)
		var len int32
		err := binary.Read(ir, networkByteOrder, &len)
		Expect(err).Should(Succeed())
		Expect(len).Should(BeEquivalentTo(8))
	})

	It("Length field always equals payload plus four", func() {
		om := NewOutputMessage('c')
		om.WriteInt16(1)
		om.WriteString("abc")
		om.WriteByte('x')
		buf := om.Encode()

		var msgLen int32
		err := binary.Read(bytes.NewBuffer(buf[1:5]), networkByteOrder, &msgLen)
		Expect(err).Should(Succeed())
		// Reading exactly msgLen-4 bytes after the header consumes the
		// whole message with nothing left over.
		Expect(len(buf) - 5).Should(Equal(int(msgLen - 4)))
	})
})
