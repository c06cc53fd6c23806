package report

import (
	"os"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF produces the combined deck: the summary text first, paginated when
// it overflows, then one chart per page with a centered caption. Images whose
// files are missing are skipped.
func WritePDF(path string, summaryLines []string, images []ChartImage) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	margin := 20.0

	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range summaryLines {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}

	for _, img := range images {
		if _, err := os.Stat(img.Path); err != nil {
			continue
		}
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 10, tr(img.Caption), "", 1, "C", false, 0, "")

		info := pdf.RegisterImageOptions(img.Path, gofpdf.ImageOptions{ImageType: "PNG"})
		if info == nil || pdf.Err() {
			// unreadable image, drop it and keep the deck going
			pdf.ClearError()
			continue
		}
		imgW := pageW - 2*margin
		imgH := imgW * info.Height() / info.Width()
		if imgH > pageH-3*margin {
			imgH = pageH - 3*margin
			imgW = imgH * info.Width() / info.Height()
		}
		pdf.ImageOptions(img.Path, margin, margin+15, imgW, imgH, false,
			gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	return pdf.OutputFileAndClose(path)
}
