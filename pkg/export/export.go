// Package export renders assembled roster grids as spreadsheets.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/roster"
)

// SheetName is the single worksheet of an export.
const SheetName = "Roster"

// ErrGenerate is returned when the workbook cannot be written.
var ErrGenerate = errors.New("generate spreadsheet")

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Grid writes g as an xlsx workbook. Every section becomes a block with its title, a
// header row and one row per position. Undeclared cells hold "-", declared cells list
// their entries one per line; cells containing the viewer are highlighted and cells
// with a vacancy are written in red.
func Grid(g roster.Grid, siteID string, anchor time.Time) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	width := 1
	for _, s := range g.Sections {
		if n := len(s.Columns) + 1; n > width {
			width = n
		}
	}
	f.SetColWidth(SheetName, "A", "A", 22)
	if width > 1 {
		f.SetColWidth(SheetName, colName(1), colName(width-1), 20)
	}

	title := fmt.Sprintf("%s: %s", siteID, g.WeekRange)
	if g.Partial {
		title += " (partial)"
	}
	f.SetCellValue(SheetName, cell(0, 1), title)
	f.SetCellStyle(SheetName, cell(0, 1), cell(0, 1), styles.title)
	if width > 1 {
		f.MergeCell(SheetName, cell(0, 1), cell(width-1, 1))
	}

	row := 3
	for _, s := range g.Sections {
		f.SetCellValue(SheetName, cell(0, row), s.Title)
		f.SetCellStyle(SheetName, cell(0, row), cell(0, row), styles.section)
		row++

		f.SetCellValue(SheetName, cell(0, row), "Position")
		for i, c := range s.Columns {
			f.SetCellValue(SheetName, cell(i+1, row), c)
		}
		f.SetCellStyle(SheetName, cell(0, row), cell(len(s.Columns), row), styles.header)
		row++

		for _, r := range s.Rows {
			f.SetCellValue(SheetName, cell(0, row), r.Position)
			for i, c := range r.Cells {
				ref := cell(i+1, row)
				if !c.Declared {
					f.SetCellValue(SheetName, ref, "-")
					continue
				}
				f.SetCellValue(SheetName, ref, cellText(c))
				switch {
				case hasTag(c, roster.TagSelf):
					f.SetCellStyle(SheetName, ref, ref, styles.self)
				case hasTag(c, roster.TagMissing):
					f.SetCellStyle(SheetName, ref, ref, styles.missing)
				default:
					f.SetCellStyle(SheetName, ref, ref, styles.wrap)
				}
			}
			row++
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	filename := fmt.Sprintf("roster_%s_%s_%s.xlsx", siteID, calendar.Format(anchor), g.Mode)
	return buf, filename, nil
}

type styles struct {
	title, section, header, wrap, self, missing int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.section, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&s.wrap, &excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}},
		{&s.self, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		}},
		{&s.missing, &excelize.Style{
			Font:      &excelize.Font{Color: "#C00000"},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		}},
	}
	for _, d := range defs {
		if *d.dst, err = f.NewStyle(d.style); err != nil {
			return styles{}, err
		}
	}
	return s, nil
}

func cellText(c roster.Cell) string {
	lines := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		lines = append(lines, e.Text)
	}
	return strings.Join(lines, "\n")
}

func hasTag(c roster.Cell, tag roster.Tag) bool {
	for _, e := range c.Entries {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
