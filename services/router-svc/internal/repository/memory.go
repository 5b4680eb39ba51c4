package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"routeguide/services/router-svc/internal/traffic"
)

// MemoryNetworkRepository хранит сети в памяти. Используется в тестах и
// при запуске без базы данных.
type MemoryNetworkRepository struct {
	mu       sync.RWMutex
	networks map[string]*Network
	samples  map[string][]traffic.FlowSample // по id сети
}

// NewMemoryNetworkRepository создаёт пустой репозиторий в памяти
func NewMemoryNetworkRepository() *MemoryNetworkRepository {
	return &MemoryNetworkRepository{
		networks: make(map[string]*Network),
		samples:  make(map[string][]traffic.FlowSample),
	}
}

func (r *MemoryNetworkRepository) Create(_ context.Context, network *Network) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if network.ID == "" {
		network.ID = uuid.NewString()
	}
	now := time.Now()
	network.CreatedAt = now
	network.UpdatedAt = now

	stored := *network
	r.networks[network.ID] = &stored

	return nil
}

func (r *MemoryNetworkRepository) GetByID(_ context.Context, id string) (*Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	network, ok := r.networks[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}

	copied := *network
	return &copied, nil
}

func (r *MemoryNetworkRepository) List(_ context.Context, opts ListOptions) ([]*NetworkSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]*NetworkSummary, 0, len(r.networks))
	for _, n := range r.networks {
		summaries = append(summaries, &NetworkSummary{
			ID:        n.ID,
			Name:      n.Name,
			NodeCount: len(n.Nodes),
			EdgeCount: len(n.Edges),
			CreatedAt: n.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(summaries) {
			return []*NetworkSummary{}, nil
		}
		summaries = summaries[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(summaries) {
		summaries = summaries[:opts.Limit]
	}

	return summaries, nil
}

func (r *MemoryNetworkRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[id]; !ok {
		return ErrNetworkNotFound
	}
	delete(r.networks, id)
	delete(r.samples, id)

	return nil
}

func (r *MemoryNetworkRepository) SaveSamples(_ context.Context, networkID string, samples []traffic.FlowSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[networkID]; !ok {
		return ErrNetworkNotFound
	}

	// Повторное наблюдение за то же ребро и интервал замещает прежнее
	existing := r.samples[networkID]
	for _, s := range samples {
		replaced := false
		for i, old := range existing {
			if old.From == s.From && old.To == s.To && old.Interval == s.Interval {
				existing[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, s)
		}
	}
	r.samples[networkID] = existing

	return nil
}

func (r *MemoryNetworkRepository) SamplesForInterval(_ context.Context, networkID, interval string) ([]traffic.FlowSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.networks[networkID]; !ok {
		return nil, ErrNetworkNotFound
	}

	var matched []traffic.FlowSample
	for _, s := range r.samples[networkID] {
		if s.Interval == interval {
			matched = append(matched, s)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].From != matched[j].From {
			return matched[i].From < matched[j].From
		}
		return matched[i].To < matched[j].To
	})

	return matched, nil
}
