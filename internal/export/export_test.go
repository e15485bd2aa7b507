package export

import (
	"testing"

	"plcgateway/internal/tagstore"
)

func fixtureTags() []*tagstore.Tag {
	t1 := tagstore.NewTag("TEMP_01", "Reactor Temp", "compactlogix", "N7:0")
	t1.Writable = true
	t1.Description = "Reactor inlet temperature"

	t2 := tagstore.NewTag("PUMP_RUN", "Pump Running", "slc500", "B3:0/1")
	t2.DataType = "Boolean"

	return []*tagstore.Tag{t1, t2}
}

func TestExcel_ProducesValidXLSX(t *testing.T) {
	result, err := Excel(fixtureTags())
	if err != nil {
		t.Fatalf("Excel() error = %v", err)
	}

	// XLSX files are zip archives, signature PK.
	if len(result) < 4 {
		t.Fatal("excel file too small")
	}
	if result[0] != 'P' || result[1] != 'K' {
		t.Error("result doesn't look like a valid XLSX file")
	}
}

func TestExcel_EmptyTagList(t *testing.T) {
	result, err := Excel(nil)
	if err != nil {
		t.Fatalf("Excel() error = %v", err)
	}
	if len(result) == 0 {
		t.Error("expected a non-empty workbook even with no tags")
	}
}

func TestPDF_ProducesValidPDF(t *testing.T) {
	result, err := PDF(fixtureTags())
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}

	if len(result) < 5 {
		t.Fatal("pdf file too small")
	}
	if string(result[:5]) != "%PDF-" {
		t.Error("result doesn't look like a valid PDF file")
	}
}

func TestPDF_EmptyTagList(t *testing.T) {
	result, err := PDF(nil)
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if string(result[:5]) != "%PDF-" {
		t.Error("result doesn't look like a valid PDF file")
	}
}
