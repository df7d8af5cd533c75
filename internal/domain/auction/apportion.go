package auction

import "container/heap"

// Apportion splits seats whole units over weights by the Sainte-Laguë
// highest-averages method: each unit goes to the largest weight/(s+0.5),
// ties to the lower index. Zero and negative weights receive nothing.
//
// The result is population monotone: raising one weight never lowers its
// share and never raises any other share.
func Apportion(weights []float64, seats int) []int {
	out := make([]int, len(weights))
	if seats <= 0 {
		return out
	}
	h := make(quotients, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			h = append(h, quotient{index: i, weight: w, value: w / 0.5})
		}
	}
	if len(h) == 0 {
		return out
	}
	heap.Init(&h)
	for ; seats > 0; seats-- {
		q := &h[0]
		out[q.index]++
		q.value = q.weight / (float64(out[q.index]) + 0.5)
		heap.Fix(&h, 0)
	}
	return out
}

type quotient struct {
	index  int
	weight float64
	value  float64
}

type quotients []quotient

func (q quotients) Len() int { return len(q) }
func (q quotients) Less(i, j int) bool {
	if q[i].value != q[j].value {
		return q[i].value > q[j].value
	}
	return q[i].index < q[j].index
}
func (q quotients) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *quotients) Push(x any)   { *q = append(*q, x.(quotient)) }
func (q *quotients) Pop() any {
	old := *q
	x := old[len(old)-1]
	*q = old[:len(old)-1]
	return x
}
