package export

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const (
	firstMonthCol = 4 // D
	totalCol      = firstMonthCol + utils.MonthsPerYear
	headerRow     = 1
)

// FeeGridXLSX renders one row per ledger with the paid amount of each month
// (blank when unpaid), a per-row total and a totals row.
func FeeGridXLSX(year int, ledgers []*domain.LedgerWithCitizen) ([]byte, error) {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "membership-fees",
		DocSecurity: 2,
	})

	sheet := fmt.Sprintf("Fees %d", year)
	if err := xlsx.SetSheetName(xlsx.GetSheetName(xlsx.GetActiveSheetIndex()), sheet); err != nil {
		return nil, err
	}

	_ = xlsx.SetColWidth(sheet, "A", "A", 30)
	_ = xlsx.SetColWidth(sheet, "B", "C", 16)
	_ = xlsx.SetColWidth(sheet, col(firstMonthCol), col(totalCol), 10)

	writeHeader(xlsx, sheet)

	_ = xlsx.SetPanes(sheet, &excelize.Panes{
		ActivePane:  "bottomRight",
		Freeze:      true,
		XSplit:      3,
		YSplit:      1,
		TopLeftCell: "D2",
	})

	row := headerRow + 1
	amountStyle, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat()))
	totalStyle, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat(), fontItalic()))
	for _, l := range ledgers {
		_ = xlsx.SetCellValue(sheet, cell(1, row), l.Citizen.Name)
		_ = xlsx.SetCellValue(sheet, cell(2, row), l.Citizen.MembershipID)
		_ = xlsx.SetCellValue(sheet, cell(3, row), l.Citizen.Mobile)

		for _, p := range l.Payments {
			if !p.Paid {
				continue
			}
			month, _, err := utils.ParseMonthLabel(p.Month)
			if err != nil {
				continue
			}
			_ = xlsx.SetCellValue(sheet, cell(firstMonthCol+int(month)-1, row), p.Amount.InexactFloat64())
		}
		_ = xlsx.SetCellStyle(sheet, cell(firstMonthCol, row), cell(totalCol-1, row), amountStyle)

		_ = xlsx.SetCellFormula(sheet, cell(totalCol, row), fmt.Sprintf("SUM(%s:%s)", cell(firstMonthCol, row), cell(totalCol-1, row)))
		_ = xlsx.SetCellStyle(sheet, cell(totalCol, row), cell(totalCol, row), totalStyle)
		row++
	}

	writeTotals(xlsx, sheet, row)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(xlsx *excelize.File, sheet string) {
	_ = xlsx.SetCellValue(sheet, cell(1, headerRow), "Name")
	_ = xlsx.SetCellValue(sheet, cell(2, headerRow), "Membership ID")
	_ = xlsx.SetCellValue(sheet, cell(3, headerRow), "Mobile")
	for i, name := range utils.AbbreviatedMonths() {
		_ = xlsx.SetCellValue(sheet, cell(firstMonthCol+i, headerRow), name)
	}
	_ = xlsx.SetCellValue(sheet, cell(totalCol, headerRow), "Total")

	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom")))
	_ = xlsx.SetCellStyle(sheet, cell(1, headerRow), cell(totalCol, headerRow), style)
}

func writeTotals(xlsx *excelize.File, sheet string, row int) {
	_ = xlsx.SetCellValue(sheet, cell(1, row), "Total")
	first, last := headerRow+1, row-1
	for c := firstMonthCol; c <= totalCol; c++ {
		if last < first {
			_ = xlsx.SetCellValue(sheet, cell(c, row), 0)
			continue
		}
		_ = xlsx.SetCellFormula(sheet, cell(c, row), fmt.Sprintf("SUM(%s:%s)", cell(c, first), cell(c, last)))
	}

	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), numberFormat(), thickBorder("top")))
	_ = xlsx.SetCellStyle(sheet, cell(1, row), cell(totalCol, row), style)
}

func col(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func cell(c, row int) string {
	name, _ := excelize.CoordinatesToCellName(c, row)
	return name
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFFFF"},
			Pattern: 1,
		},
	}
}

func numberFormat() *excelize.Style {
	format := "#,##0.00"
	return &excelize.Style{
		CustomNumFmt: &format,
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func fontItalic() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Italic: true,
		},
	}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 1,
		})
	}
	return s
}

func thickBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 2,
		})
	}
	return s
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
