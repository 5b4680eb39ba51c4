package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"routeguide/pkg/domain"
)

// NetworkHash вычисляет хеш дорожной сети для использования как ключ кэша
func NetworkHash(g *domain.Graph) string {
	if g == nil {
		return ""
	}

	data := networkToCanonical(g)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// networkToCanonical создаёт детерминированное представление сети.
// Nodes() и Edges() возвращают элементы в отсортированном порядке,
// поэтому представление стабильно между запусками.
func networkToCanonical(g *domain.Graph) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "o:%d;", g.Origin())
	for _, d := range g.Destinations() {
		fmt.Fprintf(&b, "d:%d;", d)
	}

	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "n:%d:%.3f:%.3f;", n.ID, n.Point[0], n.Point[1])
	}

	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "e:%d:%d:%.6f:%.6f;", e.From, e.To, e.DistanceM, e.Cost)
	}

	return []byte(b.String())
}

// BuildRouteKey строит ключ кэша для результата маршрутизации.
// Хеш сети стоит в конце, чтобы Invalidate мог удалить все записи сети
// по паттерну "route:*:<hash>".
func BuildRouteKey(networkHash, strategy, interval string, k int) string {
	if interval == "" {
		interval = "-"
	}
	return fmt.Sprintf("route:%s:%s:k%d:%s", strategy, interval, k, networkHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
