package audio_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/interviewer/pkg/audio"
)

var _ = Describe("Base64 payloads", func() {
	DescribeTable("round-trips bytes unchanged",
		func(data []byte) {
			decoded, err := audio.Decode(audio.Encode(data))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(data))
		},
		Entry("empty", []byte{}),
		Entry("single byte", []byte{0xff}),
		Entry("needs padding", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x9f}),
		Entry("all byte values", func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()),
	)

	It("tolerates surrounding whitespace", func() {
		decoded, err := audio.Decode("  " + audio.Encode([]byte("ID3")) + "\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(decoded)).To(Equal("ID3"))
	})

	It("rejects text that is not base64", func() {
		_, err := audio.Decode("not*base64")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("decoding base64 audio"))
	})
})
