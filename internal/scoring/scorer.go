// Package scoring оценивает текст отзыва: насколько он похож на честный
// и допустимый. Стратегия подключаемая, движок использует только результат.
package scoring

import (
	"context"
	"math"
)

// Neutral оценка, которая используется, когда оценщик не ответил.
const Neutral = 0.5

// Assessment результат оценки текста.
type Assessment struct {
	Score float64
	// Flags метки, которые оценщик считает поводом для ручной проверки.
	Flags []string
}

// Scorer оценивает текст отзыва. Score всегда в диапазоне [0, 1].
type Scorer interface {
	Score(ctx context.Context, text string) (Assessment, error)
}

// Func позволяет использовать функцию как Scorer.
type Func func(ctx context.Context, text string) (Assessment, error)

func (f Func) Score(ctx context.Context, text string) (Assessment, error) {
	return f(ctx, text)
}

// Valid сообщает, что оценка является числом из диапазона [0, 1].
func (a Assessment) Valid() bool {
	return !math.IsNaN(a.Score) && a.Score >= 0 && a.Score <= 1
}

// clamp ограничивает оценку диапазоном [0, 1] и округляет до сотых.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return Neutral
	}
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(1, v))
}
