// Package export writes cached results as downloadable XLSX and PDF files.
package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/pageza/smartplate/internal/types"
)

// Sheet names in the workbook
const (
	RecommendationsSheet = "Recommendations"
	TargetsSheet         = "Targets"
)

var recommendationHeader = []interface{}{
	"#", "Name", "Category", "Cluster", "Similarity", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)",
}

// WriteXLSX writes a workbook with one sheet for the recommendations, in
// order, and one for the targets.
func WriteXLSX(w io.Writer, targets types.NutrientTargets, recs []types.RecommendationItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RecommendationsSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	sw, err := f.NewStreamWriter(RecommendationsSheet)
	if err != nil {
		return errors.Wrap(err, "open recommendations sheet")
	}
	if err := sw.SetRow("A1", recommendationHeader); err != nil {
		return err
	}
	for i, r := range recs {
		row := []interface{}{
			i + 1, r.Name, r.Category, string(r.Cluster), r.Similarity,
			r.Calories, r.ProteinG, r.CarbsG, r.FatG,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "flush recommendations sheet")
	}

	if _, err := f.NewSheet(TargetsSheet); err != nil {
		return errors.Wrap(err, "create targets sheet")
	}
	tw, err := f.NewStreamWriter(TargetsSheet)
	if err != nil {
		return errors.Wrap(err, "open targets sheet")
	}
	if err := tw.SetRow("A1", []interface{}{"Nutrient", "Value", "Unit"}); err != nil {
		return err
	}
	values := []*float64{targets.Calories, targets.ProteinG, targets.CarbsG, targets.FatG}
	for i, line := range targets.Summary() {
		var v interface{} = types.Placeholder
		if values[i] != nil {
			v = *values[i]
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := tw.SetRow(cell, []interface{}{line.Label, v, line.Unit}); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush targets sheet")
	}

	return errors.Wrap(f.Write(w), "write workbook")
}
