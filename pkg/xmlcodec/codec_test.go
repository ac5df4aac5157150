package xmlcodec_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proofpanel/docvault/pkg/xmlcodec"
)

func TestXMLCodec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "XMLCodec Suite")
}

var _ = Describe("Base64", func() {
	// Given payloads around the encoder chunk boundary
	// When they are encoded and decoded again
	// Then the round trip must be byte-exact
	It("should round-trip payloads across chunk boundaries", func() {
		for _, size := range []int{0, 1, 31, 32 * 1024, 32*1024 + 1, 100 * 1024} {
			payload := bytes.Repeat([]byte{0xA5}, size)

			encoded := xmlcodec.ToBase64(payload)
			decoded, err := xmlcodec.FromBase64(encoded)

			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(payload))
		}
	})

	It("should match the standard library encoding", func() {
		payload := []byte("the quick brown fox")
		Expect(xmlcodec.ToBase64(payload)).To(Equal(base64.StdEncoding.EncodeToString(payload)))
	})

	It("should tolerate surrounding whitespace when decoding", func() {
		decoded, err := xmlcodec.FromBase64("  aGVsbG8=\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(decoded)).To(Equal("hello"))
	})
})

var _ = Describe("WrapFragment", func() {
	It("should emit a declaration, attributes and body", func() {
		xml := xmlcodec.WrapFragment("dataFile-report-abc123", []xmlcodec.Attribute{
			{Name: "fileName", Value: "report.pdf"},
			{Name: "createdUtc", Value: "2026-01-02T03:04:05Z"},
		}, "QUJD")

		Expect(xml).To(Equal(`<?xml version="1.0" encoding="UTF-8"?>` +
			`<dataFile-report-abc123 fileName="report.pdf" createdUtc="2026-01-02T03:04:05Z">` +
			`QUJD</dataFile-report-abc123>`))
	})

	// Given attribute values containing XML metacharacters
	// When the fragment is built
	// Then the values must be escaped
	It("should escape attribute values", func() {
		xml := xmlcodec.WrapFragment("part", []xmlcodec.Attribute{
			{Name: "fileName", Value: `a&b "c" <d>`},
		}, "")

		Expect(xml).To(ContainSubstring(`fileName="a&amp;b &quot;c&quot; &lt;d&gt;"`))
	})
})

var _ = Describe("ExtractBody", func() {
	It("should extract the body of the matching element", func() {
		xml := `<?xml version="1.0" encoding="UTF-8"?><proofPanelData>QUJD</proofPanelData>`

		body, ok := xmlcodec.ExtractBody(xml, "proofPanelData")

		Expect(ok).To(BeTrue())
		Expect(body).To(Equal("QUJD"))
	})

	It("should fall back to the root element when the tag does not match", func() {
		xml := `<someOtherRoot>QUJD</someOtherRoot>`

		body, ok := xmlcodec.ExtractBody(xml, "proofPanelData")

		Expect(ok).To(BeTrue())
		Expect(body).To(Equal("QUJD"))
	})

	// Given XML the parser rejects
	// When the body is extracted
	// Then the substring scan must still recover it
	It("should recover the body from malformed XML via substring scan", func() {
		xml := `<proofPanelData attr=>QUJD</proofPanelData>`

		body, ok := xmlcodec.ExtractBody(xml, "proofPanelData")

		Expect(ok).To(BeTrue())
		Expect(body).To(Equal("QUJD"))
	})

	It("should extract the body when the element carries attributes", func() {
		xml := `<dataFile-x-1 fileName="a.pdf" createdUtc="2026-01-01T00:00:00Z">Zm9v</dataFile-x-1>`

		body, ok := xmlcodec.ExtractBody(xml, "dataFile-x-1")

		Expect(ok).To(BeTrue())
		Expect(body).To(Equal("Zm9v"))
	})

	It("should report absence for an empty body", func() {
		_, ok := xmlcodec.ExtractBody(`<proofPanelData></proofPanelData>`, "proofPanelData")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("TrySalvageDoubleEncoded", func() {
	// Given a fragment that was base64-encoded one extra time by a
	// historical writer
	// When salvage runs
	// Then the inner fragment must be recovered
	It("should recover a double-encoded fragment", func() {
		inner := `<proofPanelData>QUJD</proofPanelData>`
		outer := xmlcodec.ToBase64([]byte(inner))

		salvaged, ok := xmlcodec.TrySalvageDoubleEncoded(outer)

		Expect(ok).To(BeTrue())
		Expect(salvaged).To(Equal(inner))
	})

	It("should refuse input that already contains markup", func() {
		_, ok := xmlcodec.TrySalvageDoubleEncoded(`<proofPanelData>QUJD</proofPanelData>`)
		Expect(ok).To(BeFalse())
	})

	It("should refuse base64 that does not decode to markup", func() {
		_, ok := xmlcodec.TrySalvageDoubleEncoded(xmlcodec.ToBase64([]byte("plain text")))
		Expect(ok).To(BeFalse())
	})

	It("should refuse text that is not base64", func() {
		_, ok := xmlcodec.TrySalvageDoubleEncoded("definitely not base64!!!")
		Expect(ok).To(BeFalse())
	})
})
