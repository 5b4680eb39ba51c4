package domain

import "math"

// Числовые константы для сравнения вещественных чисел
const (
	// Epsilon - точность сравнения вещественных чисел
	Epsilon = 1e-9

	// Infinity - бесконечность для алгоритмов поиска
	Infinity = math.MaxFloat64
)

// FloatEquals сравнивает два вещественных числа с точностью Epsilon
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// KmhToMs переводит км/ч в м/с
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// MsToKmh переводит м/с в км/ч
func MsToKmh(ms float64) float64 {
	return ms * 3.6
}
