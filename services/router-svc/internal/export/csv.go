package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVExporter выгрузка маршрутов в CSV
type CSVExporter struct{}

// NewCSVExporter создаёт новый экспортёр
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format возвращает формат экспортёра
func (e *CSVExporter) Format() Format {
	return FormatCSV
}

// ContentType возвращает MIME-тип выгрузки
func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Export генерирует CSV выгрузку
func (e *CSVExporter) Export(_ context.Context, data *ExportData) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{"rank", "destination", "travel_time_s", "nodes_expanded", "route"})

	resp := data.Response
	for i, p := range resp.Paths {
		nodes := make([]string, len(p.Nodes))
		for j, n := range p.Nodes {
			nodes[j] = strconv.FormatInt(n, 10)
		}
		cw.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(p.Destination(), 10),
			fmt.Sprintf("%.2f", p.TravelTime),
			strconv.Itoa(p.Expanded),
			strings.Join(nodes, "->"),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}
