package export

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"plcgateway/internal/tagstore"
)

var (
	headerBgColor = &props.Color{Red: 44, Green: 62, Blue: 80}
	darkGrayColor = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center, Color: headerBgColor}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}
	boldStyle  = props.Text{Size: 9, Style: fontstyle.Bold}
	normalStyle = props.Text{Size: 9}
)

// PDF renders a one-page-per-N-rows tag documentation table.
func PDF(tags []*tagstore.Tag) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)
	addHeader(m)
	addTagTable(m, tags)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("export: failed to generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto) {
	m.AddRow(12, text.NewCol(12, "Gateway Tag Documentation", titleStyle))
	m.AddRow(5, line.NewCol(12))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), smallStyle))
	m.AddRow(8)
}

func addTagTable(m core.Maroto, tags []*tagstore.Tag) {
	m.AddRow(6,
		text.NewCol(2, "Tag ID", boldStyle),
		text.NewCol(2, "PLC", boldStyle),
		text.NewCol(2, "Address", boldStyle),
		text.NewCol(2, "Type", boldStyle),
		text.NewCol(2, "Enabled", boldStyle),
		text.NewCol(2, "Writable", boldStyle),
	)
	for _, t := range tags {
		m.AddRow(5,
			text.NewCol(2, t.TagID, normalStyle),
			text.NewCol(2, t.PLCID, normalStyle),
			text.NewCol(2, t.Address, normalStyle),
			text.NewCol(2, t.DataType, normalStyle),
			text.NewCol(2, fmt.Sprintf("%v", t.Enabled), normalStyle),
			text.NewCol(2, fmt.Sprintf("%v", t.Writable), normalStyle),
		)
	}
}
