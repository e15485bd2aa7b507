// Package export renders the Tag Store's metadata as downloadable
// documentation, in xlsx or pdf, for GET /tags/export — a supplemented
// feature with no counterpart in the original gateway.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"plcgateway/internal/tagstore"
)

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// Excel renders one sheet listing every tag's metadata.
func Excel(tags []*tagstore.Tag) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Tags"
	f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	headers := []string{"Tag ID", "Name", "PLC", "Address", "Data Type", "Group", "Scale Mul", "Scale Add", "Writable", "Enabled", "Description"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cellAddr(string(rune('A'+len(headers)-1)), 1), headerStyle)

	for i, t := range tags {
		row := i + 2
		f.SetCellValue(sheetName, cellAddr("A", row), t.TagID)
		f.SetCellValue(sheetName, cellAddr("B", row), t.Name)
		f.SetCellValue(sheetName, cellAddr("C", row), t.PLCID)
		f.SetCellValue(sheetName, cellAddr("D", row), t.Address)
		f.SetCellValue(sheetName, cellAddr("E", row), t.DataType)
		f.SetCellValue(sheetName, cellAddr("F", row), t.GroupID)
		f.SetCellValue(sheetName, cellAddr("G", row), t.ScaleMul)
		f.SetCellValue(sheetName, cellAddr("H", row), t.ScaleAdd)
		f.SetCellValue(sheetName, cellAddr("I", row), t.Writable)
		f.SetCellValue(sheetName, cellAddr("J", row), t.Enabled)
		f.SetCellValue(sheetName, cellAddr("K", row), t.Description)
	}

	f.SetColWidth(sheetName, "A", "K", 16)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
