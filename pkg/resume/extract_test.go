package resume_test

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/interviewer/pkg/resume"
)

var _ = Describe("MergeFragments", func() {
	DescribeTable("joins fragments on their own line breaks",
		func(fragments []resume.Fragment, expected string) {
			Expect(resume.MergeFragments(fragments)).To(Equal(expected))
		},
		Entry("no fragments", []resume.Fragment{}, ""),
		Entry("single row",
			[]resume.Fragment{{Str: "Jane "}, {Str: "Doe", EOL: true}},
			"Jane Doe\n"),
		Entry("several rows",
			[]resume.Fragment{{Str: "Jane Doe", EOL: true}, {Str: "Backend", EOL: true}, {Str: "Go"}},
			"Jane Doe\nBackend\nGo"),
		Entry("empty fragment ending a line",
			[]resume.Fragment{{Str: "Skills"}, {Str: "", EOL: true}},
			"Skills\n"),
	)
})

var _ = Describe("ExtractFirstPage", func() {
	It("returns the text of a one-page résumé", func() {
		data := onePagePDF([]string{
			"Experienced backend engineer with ten years of Go",
			"Led the payments platform team",
		})

		text, err := resume.ExtractFirstPage(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("Experienced backend engineer with ten years of Go"))
		Expect(text).To(ContainSubstring("Led the payments platform team"))
	})

	It("puts each row on its own line", func() {
		data := onePagePDF([]string{"Jane Doe", "Staff Engineer"})

		text, err := resume.ExtractFirstPage(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Jane Doe\nStaff Engineer\n"))
	})

	It("keeps cells on the same row on one line", func() {
		doc := fpdf.New("P", "mm", "A4", "")
		doc.SetCompression(false)
		doc.SetFont("Helvetica", "", 12)
		doc.AddPage()
		doc.Cell(40, 10, "Skills")
		doc.Cell(40, 10, "Go")
		doc.Ln(12)
		doc.Cell(40, 10, "Kubernetes")
		var buf bytes.Buffer
		Expect(doc.Output(&buf)).To(Succeed())

		text, err := resume.ExtractFirstPage(buf.Bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Skills Go\nKubernetes\n"))
	})

	It("reports a document without pages", func() {
		_, err := resume.ExtractFirstPage(zeroPagePDF())
		Expect(err).To(MatchError(resume.ErrNoPages))
	})

	It("ignores every page after the first", func() {
		data := onePagePDF([]string{"Experienced backend engineer"}, "References available on request")

		text, err := resume.ExtractFirstPage(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("Experienced backend engineer"))
		Expect(text).NotTo(ContainSubstring("References"))
	})

	It("rejects an empty upload", func() {
		_, err := resume.ExtractFirstPage(nil)
		Expect(err).To(MatchError(resume.ErrEmptyDocument))
	})

	It("fails on data that is not a PDF", func() {
		_, err := resume.ExtractFirstPage([]byte("this is a plain text résumé"))
		Expect(err).To(HaveOccurred())
	})
})
