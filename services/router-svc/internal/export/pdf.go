package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFExporter выгрузка маршрутов в PDF
type PDFExporter struct{}

// NewPDFExporter создаёт новый экспортёр
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Format возвращает формат экспортёра
func (e *PDFExporter) Format() Format {
	return FormatPDF
}

// ContentType возвращает MIME-тип выгрузки
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Стили
var (
	pdfHeaderColor = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	pdfAccentColor = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	pdfGrayColor   = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	pdfTitleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: pdfHeaderColor,
	}

	pdfSectionStyle = props.Text{
		Size:  13,
		Style: fontstyle.Bold,
		Color: pdfHeaderColor,
		Top:   3,
	}

	pdfLabelStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
	}

	pdfValueStyle = props.Text{
		Size: 9,
	}

	pdfSmallStyle = props.Text{
		Size:  8,
		Color: pdfGrayColor,
	}

	pdfTableHeaderStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: pdfAccentColor,
	}
)

// Export генерирует PDF выгрузку
func (e *PDFExporter) Export(_ context.Context, data *ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	e.addHeader(m, data)
	e.addRequestInfo(m, data)
	e.addRoutesTable(m, data)
	e.addWarnings(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (e *PDFExporter) addHeader(m core.Maroto, data *ExportData) {
	m.AddRow(12,
		text.NewCol(12, "Route Guidance Report", pdfTitleStyle),
	)

	m.AddRow(4,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Network: %s", data.NetworkName), pdfSmallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: pdfGrayColor, Align: align.Right}),
	)

	m.AddRow(6) // Отступ
}

func (e *PDFExporter) addRequestInfo(m core.Maroto, data *ExportData) {
	resp := data.Response

	m.AddRow(8,
		text.NewCol(12, "Request", pdfSectionStyle),
	)

	rows := [][2]string{
		{"Strategy", resp.Strategy},
		{"Interval", resp.Interval},
		{"Routes requested", strconv.Itoa(resp.K)},
		{"Routes found", strconv.Itoa(len(resp.Paths))},
	}
	for _, kv := range rows {
		m.AddRow(5,
			text.NewCol(4, kv[0], pdfLabelStyle),
			text.NewCol(8, kv[1], pdfValueStyle),
		)
	}

	m.AddRow(4)
}

func (e *PDFExporter) addRoutesTable(m core.Maroto, data *ExportData) {
	m.AddRow(8,
		text.NewCol(12, "Routes", pdfSectionStyle),
	)

	m.AddRow(6,
		text.NewCol(1, "Rank", pdfTableHeaderStyle),
		text.NewCol(2, "Destination", pdfTableHeaderStyle),
		text.NewCol(2, "Time (s)", pdfTableHeaderStyle),
		text.NewCol(2, "Expanded", pdfTableHeaderStyle),
		text.NewCol(5, "Route", pdfTableHeaderStyle),
	)
	m.AddRow(2,
		line.NewCol(12),
	)

	for i, p := range data.Response.Paths {
		nodes := make([]string, len(p.Nodes))
		for j, n := range p.Nodes {
			nodes[j] = strconv.FormatInt(n, 10)
		}

		m.AddRow(5,
			text.NewCol(1, strconv.Itoa(i+1), pdfValueStyle),
			text.NewCol(2, strconv.FormatInt(p.Destination(), 10), pdfValueStyle),
			text.NewCol(2, fmt.Sprintf("%.2f", p.TravelTime), pdfValueStyle),
			text.NewCol(2, strconv.Itoa(p.Expanded), pdfValueStyle),
			text.NewCol(5, strings.Join(nodes, " -> "), pdfValueStyle),
		)
	}
}

func (e *PDFExporter) addWarnings(m core.Maroto, data *ExportData) {
	if len(data.Response.Warnings) == 0 {
		return
	}

	m.AddRow(8,
		text.NewCol(12, "Warnings", pdfSectionStyle),
	)
	for _, w := range data.Response.Warnings {
		m.AddRow(5,
			text.NewCol(12, w, pdfSmallStyle),
		)
	}
}
