package marks

import (
	"fmt"
	"testing"
	"time"
)

func benchScene(b *testing.B, n int, opts ...Option) *Scene {
	b.Helper()
	e := NewEngine(opts...)
	b.Cleanup(e.Close)
	s := newTestScene(e, "bench")
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i % 97)
	}
	s.Add(MarkBar).
		Data(data).
		Left(func(it *Item) float64 { return float64(it.Index) }).
		Width(1).
		Bottom(0).
		Height(func(it *Item) float64 { return it.Data.(float64) }).
		Fill(func(it *Item) Color { return Color{R: it.Data.(float64) / 97, A: 1} })
	return s
}

func BenchmarkUpdate(b *testing.B) {
	for _, n := range []int{1_000, 10_000} {
		for _, c := range engineConfigs {
			b.Run(fmt.Sprintf("%s/%d", c.name, n), func(b *testing.B) {
				s := benchScene(b, n, c.opts...)
				s.pass(nil)
				b.ReportAllocs()
				b.ResetTimer()
				for range b.N {
					s.pass(nil)
				}
			})
		}
	}
}

func BenchmarkAnimatedStep(b *testing.B) {
	s := benchScene(b, 10_000, WithWorkers(4))
	s.pass(nil)
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		p := NewParallel()
		s.pass(p)
		p.Step(0, time.Second, Linear)
		p.Step(500*time.Millisecond, time.Second, Linear)
		p.Step(time.Second, time.Second, Linear)
	}
}
