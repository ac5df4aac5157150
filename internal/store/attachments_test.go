package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/models"
	"github.com/proofpanel/docvault/internal/store"
	"github.com/proofpanel/docvault/pkg/xmlcodec"
)

var _ = Describe("AttachmentStore", func() {
	var (
		ctx  context.Context
		host *hostdoc.MemHost
		s    *store.Store
		att  *store.AttachmentStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		host = hostdoc.NewMemHost()
		s = store.NewStore(host)
		att = s.Attachments()
	})

	AfterEach(func() {
		s.Close()
	})

	Describe("GeneratePartName", func() {
		It("should sanitize the file name and append a disambiguator", func() {
			Expect(store.GeneratePartName("Report v1.pdf")).To(MatchRegexp(`^dataFile-report-v1-[a-z0-9]{6}$`))
		})

		It("should substitute a placeholder when nothing survives sanitizing", func() {
			Expect(store.GeneratePartName("---.pdf")).To(MatchRegexp(`^dataFile-file-[a-z0-9]{6}$`))
		})
	})

	It("should keep EnsureSchema idempotent", func() {
		Expect(att.EnsureSchema(ctx)).To(Succeed())

		record := &models.DataFileRecord{
			FileName:    "kept.bin",
			XmlPartName: "dataFile-kept-111111",
			RawFileSize: 1,
			CreatedUtc:  "2026-01-01T00:00:00Z",
		}
		Expect(att.RecordMetadata(ctx, record)).To(Succeed())

		Expect(att.EnsureSchema(ctx)).To(Succeed())
		Expect(att.EnsureSchema(ctx)).To(Succeed())

		records, err := att.ListRecords(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
	})

	It("should round-trip a payload through its part", func() {
		payload := xmlcodec.ToBase64([]byte("binary payload"))
		partName, createdUtc, err := att.SavePayload(ctx, "notes.txt", payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(createdUtc).NotTo(BeEmpty())

		body, found, err := att.LoadPayload(ctx, partName)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		raw, err := xmlcodec.FromBase64(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal("binary payload"))
	})

	It("should report an absent payload without error", func() {
		_, found, err := att.LoadPayload(ctx, "dataFile-missing-abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	// Given a part that matches the tag scan but carries no body
	// Then loading it reports absence rather than an error
	It("should treat a part without an extractable body as absent", func() {
		Expect(host.AddPart(ctx, "<dataFile-empty-aaaaaa></dataFile-empty-aaaaaa>")).To(Succeed())
		Expect(host.Flush(ctx)).To(Succeed())

		_, found, err := att.LoadPayload(ctx, "dataFile-empty-aaaaaa")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	// Given two uploads sharing a file name
	// When both record metadata
	// Then one row remains, pointing at the second part
	It("should collapse same-named uploads into one row", func() {
		first, firstCreated, err := att.SavePayload(ctx, "report.pdf", "QQ==")
		Expect(err).NotTo(HaveOccurred())
		second, secondCreated, err := att.SavePayload(ctx, "report.pdf", "Qg==")
		Expect(err).NotTo(HaveOccurred())
		Expect(second).NotTo(Equal(first))

		Expect(att.RecordMetadata(ctx, &models.DataFileRecord{
			FileName: "report.pdf", XmlPartName: first, RawFileSize: 1, CreatedUtc: firstCreated,
		})).To(Succeed())
		Expect(att.RecordMetadata(ctx, &models.DataFileRecord{
			FileName: "report.pdf", XmlPartName: second, RawFileSize: 2, CreatedUtc: secondCreated,
		})).To(Succeed())

		records, err := att.ListRecords(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].XmlPartName).To(Equal(second))
		Expect(records[0].RawFileSize).To(BeEquivalentTo(2))
	})

	// Given a payload part written without its metadata row
	// Then no row references it, while the orphan part itself is tolerated
	It("should leave no row behind when metadata is never recorded", func() {
		partName, _, err := att.SavePayload(ctx, "orphan.bin", "QQ==")
		Expect(err).NotTo(HaveOccurred())

		records, err := att.ListRecords(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())

		_, found, err := att.LoadPayload(ctx, partName)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
	})

	// Given a record whose part was removed out-of-band
	// When the attachment is deleted
	// Then the metadata row still goes away and the call succeeds
	It("should delete metadata even when the part is already gone", func() {
		partName, createdUtc, err := att.SavePayload(ctx, "doomed.pdf", "QQ==")
		Expect(err).NotTo(HaveOccurred())
		Expect(att.RecordMetadata(ctx, &models.DataFileRecord{
			FileName: "doomed.pdf", XmlPartName: partName, RawFileSize: 1, CreatedUtc: createdUtc,
		})).To(Succeed())

		Expect(host.RemoveCommitted(partName)).To(BeTrue())

		Expect(att.DeletePayloadAndRecord(ctx, partName)).To(Succeed())
		records, err := att.ListRecords(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("should list newest records first", func() {
		Expect(att.RecordMetadata(ctx, &models.DataFileRecord{
			FileName: "a.bin", XmlPartName: "dataFile-a-111111", RawFileSize: 1,
			CreatedUtc: "2026-01-01T00:00:00Z",
		})).To(Succeed())
		Expect(att.RecordMetadata(ctx, &models.DataFileRecord{
			FileName: "b.bin", XmlPartName: "dataFile-b-222222", RawFileSize: 2,
			CreatedUtc: "2026-02-01T00:00:00Z",
		})).To(Succeed())

		records, err := att.ListRecords(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].FileName).To(Equal("b.bin"))
		Expect(records[1].FileName).To(Equal("a.bin"))
	})

	It("should persist thumbnail fields through the row", func() {
		width, height := 260, 130
		Expect(att.RecordMetadata(ctx, &models.DataFileRecord{
			FileName:        "thumb.pdf",
			XmlPartName:     "dataFile-thumb-333333",
			RawFileSize:     10240,
			ThumbnailPng:    []byte{0x89, 'P', 'N', 'G'},
			ThumbnailWidth:  &width,
			ThumbnailHeight: &height,
			CreatedUtc:      "2026-03-01T00:00:00Z",
		})).To(Succeed())

		records, err := att.ListRecords(ctx, store.WithFileName("thumb.pdf"))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))

		got := records[0]
		Expect(got.HasThumbnail()).To(BeTrue())
		Expect(*got.ThumbnailWidth).To(Equal(260))
		Expect(*got.ThumbnailHeight).To(Equal(130))
		Expect(got.ThumbnailMimeType).To(Equal("image/png"))
		Expect(got.RawFileSize).To(BeEquivalentTo(10240))
	})
})
