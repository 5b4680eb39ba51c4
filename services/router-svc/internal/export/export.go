// Package export выгружает результаты маршрутизации в файловые форматы.
package export

import (
	"context"
	"time"

	"routeguide/pkg/apperror"

	"routeguide/services/router-svc/internal/service"
)

// Format формат выгрузки
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ExportData данные для выгрузки
type ExportData struct {
	NetworkName string                 `json:"network_name"`
	Response    *service.RouteResponse `json:"response"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// Exporter интерфейс выгрузки маршрутов
type Exporter interface {
	Export(ctx context.Context, data *ExportData) ([]byte, error)
	Format() Format
	ContentType() string
}

// ForFormat возвращает экспортёр для формата
func ForFormat(format Format) (Exporter, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatJSON, "":
		return NewJSONExporter(), nil
	case FormatExcel:
		return NewExcelExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			"unknown export format, supported: csv, json, xlsx, pdf", "format")
	}
}

// FileName формирует имя файла выгрузки
func FileName(format Format, networkName string) string {
	name := networkName
	if name == "" {
		name = "routes"
	}
	return name + "." + string(format)
}
