// Package builder собирает взвешенный по времени граф из базовой дорожной
// сети и наблюдений трафика за выбранный интервал.
package builder

import (
	"fmt"
	"sort"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"

	"routeguide/services/router-svc/internal/traffic"
)

// Builder преобразует дорожную сеть в граф времени в пути.
// Преобразование чистое: базовый граф не изменяется.
type Builder struct {
	converter     *traffic.Converter
	defaultVolume float64
}

// Report - итог сборки: покрытие рёбер наблюдениями и предупреждения.
type Report struct {
	Interval       string           `json:"interval,omitempty"`
	EdgeCount      int              `json:"edge_count"`
	DefaultedEdges []domain.EdgeKey `json:"defaulted_edges,omitempty"`
	DegradedEdges  []domain.EdgeKey `json:"degraded_edges,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"`
}

// New создаёт сборщик. Отрицательный объём по умолчанию обнуляется.
func New(converter *traffic.Converter, defaultVolume float64) *Builder {
	if defaultVolume < 0 {
		defaultVolume = 0
	}
	return &Builder{
		converter:     converter,
		defaultVolume: defaultVolume,
	}
}

// Build взвешивает рёбра базового графа временем в пути по наблюдениям
// за интервал. Рёбра без наблюдения получают объём по умолчанию,
// перегруженные рёбра помечаются как деградировавшие; и то и другое
// попадает в отчёт предупреждениями, а не ошибками.
func (b *Builder) Build(base *domain.Graph, samples []traffic.FlowSample, interval string) (*domain.Graph, *Report, error) {
	if base == nil {
		return nil, nil, apperror.ErrNilNetwork
	}
	if interval != "" {
		if err := traffic.ValidateInterval(interval); err != nil {
			return nil, nil, err
		}
	}

	report := &Report{
		Interval:  interval,
		EdgeCount: base.EdgeCount(),
	}

	volumes, err := b.indexSamples(base, samples, interval, report)
	if err != nil {
		return nil, nil, err
	}

	weights := make(map[domain.EdgeKey]domain.Weight, base.EdgeCount())
	for _, e := range base.Edges() {
		key := domain.EdgeKey{From: e.From, To: e.To}

		volume, observed := volumes[key]
		if !observed {
			volume = b.defaultVolume
			report.DefaultedEdges = append(report.DefaultedEdges, key)
			report.Warnings = append(report.Warnings,
				apperror.NewWarning(apperror.CodeDefaultedVolume,
					fmt.Sprintf("segment %s has no observation, using default volume %.0f veh/h", key, volume)).Message)
		}

		seconds, degraded, err := b.converter.TravelTime(volume, e.DistanceM)
		if err != nil {
			return nil, nil, err
		}
		if degraded {
			report.DegradedEdges = append(report.DegradedEdges, key)
			report.Warnings = append(report.Warnings,
				apperror.NewWarning(apperror.CodeDegradedEdge,
					fmt.Sprintf("segment %s volume %.0f veh/h exceeds model capacity, clamped to crawl speed", key, volume)).Message)
		}

		weights[key] = domain.Weight{
			Cost:      seconds,
			Degraded:  degraded,
			Defaulted: !observed,
		}
	}

	weighted, err := base.Reweight(weights, b.converter.SpeedLimitKmh())
	if err != nil {
		return nil, nil, err
	}

	sortKeys(report.DefaultedEdges)
	sortKeys(report.DegradedEdges)

	return weighted, report, nil
}

// indexSamples группирует наблюдения по рёбрам. Наблюдения за другой
// интервал пропускаются, наблюдения на неизвестных рёбрах дают
// предупреждение, повторные наблюдения на одном ребре суммируются.
func (b *Builder) indexSamples(base *domain.Graph, samples []traffic.FlowSample, interval string, report *Report) (map[domain.EdgeKey]float64, error) {
	volumes := make(map[domain.EdgeKey]float64, len(samples))

	for _, s := range samples {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if interval != "" && s.Interval != "" && s.Interval != interval {
			continue
		}

		key := s.EdgeKey()
		if _, ok := base.Edge(key.From, key.To); !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("observation for unknown segment %s skipped", key))
			continue
		}

		volumes[key] += s.VolumePerHour()
	}

	return volumes, nil
}

func sortKeys(keys []domain.EdgeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})
}
