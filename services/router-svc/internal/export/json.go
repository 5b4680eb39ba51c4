package export

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONExporter выгрузка маршрутов в JSON
type JSONExporter struct{}

// NewJSONExporter создаёт новый экспортёр
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format возвращает формат экспортёра
func (e *JSONExporter) Format() Format {
	return FormatJSON
}

// ContentType возвращает MIME-тип выгрузки
func (e *JSONExporter) ContentType() string {
	return "application/json"
}

// Export генерирует JSON выгрузку
func (e *JSONExporter) Export(_ context.Context, data *ExportData) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json write error: %w", err)
	}
	return out, nil
}
