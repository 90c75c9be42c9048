package export

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/smartplate/internal/types"
)

// WritePDF writes a one page summary of the targets and recommendations
func WritePDF(w io.Writer, targets types.NutrientTargets, recs []types.RecommendationItem, generated time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle("SmartPlate results", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	marginL, _, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	// Header bar
	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW*0.6, 10, "SmartPlate - Daily Targets", "", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW*0.4, 10, generated.Format("2006-01-02 15:04"), "", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range targets.Summary() {
		pdf.CellFormat(contentW, 6.5, line.Label+": "+line.Value+" "+line.Unit, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Name", 0.34, "L"},
		{"Category", 0.24, "L"},
		{"Cluster", 0.12, "C"},
		{"Similarity", 0.15, "R"},
		{"kcal", 0.15, "R"},
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	for _, c := range cols {
		pdf.CellFormat(contentW*c.width, 6, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(recs) == 0 {
		pdf.CellFormat(contentW, 6, "No recommendations", "1", 1, "C", false, 0, "")
	}
	for _, r := range recs {
		cells := []string{
			tr(r.Name),
			tr(r.Category),
			string(r.Cluster),
			types.FormatNumber(r.Similarity),
			types.CaloriesBadge(r.Calories),
		}
		for i, c := range cols {
			pdf.CellFormat(contentW*c.width, 6, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
