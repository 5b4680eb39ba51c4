package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter выгрузка маршрутов в Excel
type ExcelExporter struct{}

// NewExcelExporter создаёт новый экспортёр
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Format возвращает формат экспортёра
func (e *ExcelExporter) Format() Format {
	return FormatExcel
}

// ContentType возвращает MIME-тип выгрузки
func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export генерирует Excel выгрузку
func (e *ExcelExporter) Export(_ context.Context, data *ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	e.writeRoutesSheet(f, data)

	// Записываем в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeRoutesSheet(f *excelize.File, data *ExportData) {
	sheetName := "Routes"
	f.NewSheet(sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	resp := data.Response
	row := 1

	// Заголовок
	f.SetCellValue(sheetName, cellAddr("A", row), "Route Guidance Report")
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("E", row))
	row += 2

	// Метаданные запроса
	f.SetCellValue(sheetName, cellAddr("A", row), "Request")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	meta := [][2]any{
		{"Network", data.NetworkName},
		{"Strategy", resp.Strategy},
		{"Interval", resp.Interval},
		{"Routes requested", resp.K},
		{"Routes found", len(resp.Paths)},
		{"Generated at", data.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for _, kv := range meta {
		f.SetCellValue(sheetName, cellAddr("A", row), kv[0])
		f.SetCellValue(sheetName, cellAddr("B", row), kv[1])
		row++
	}
	row++

	// Таблица маршрутов
	headers := []string{"Rank", "Destination", "Travel Time (s)", "Nodes Expanded", "Route"}
	cols := []string{"A", "B", "C", "D", "E"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(cols[i], row), h)
	}
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("E", row), headerStyle)
	row++

	for i, p := range resp.Paths {
		nodes := make([]string, len(p.Nodes))
		for j, n := range p.Nodes {
			nodes[j] = strconv.FormatInt(n, 10)
		}

		f.SetCellValue(sheetName, cellAddr("A", row), i+1)
		f.SetCellValue(sheetName, cellAddr("B", row), p.Destination())
		f.SetCellValue(sheetName, cellAddr("C", row), p.TravelTime)
		f.SetCellValue(sheetName, cellAddr("D", row), p.Expanded)
		f.SetCellValue(sheetName, cellAddr("E", row), strings.Join(nodes, " -> "))
		row++
	}

	// Предупреждения
	if len(resp.Warnings) > 0 {
		row++
		f.SetCellValue(sheetName, cellAddr("A", row), "Warnings")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("A", row), headerStyle)
		row++
		for _, w := range resp.Warnings {
			f.SetCellValue(sheetName, cellAddr("A", row), w)
			row++
		}
	}

	f.SetColWidth(sheetName, "A", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 40)
}

// cellAddr формирует адрес ячейки
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
