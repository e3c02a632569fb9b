package ntcore

import "math"

// latencyQuantile implements the P-Square algorithm for streaming
// quantile estimation in O(1) per observation, grounded on the
// eventloop.pSquareQuantile estimator (eventloop/psquare.go) used there
// for tick-latency percentiles; reused here for wait-latency percentiles
// (spec section 4.11).
//
// Reference: Jain, R. and Chlamtac, I. (1985). "The P^2 Algorithm for
// Dynamic Calculation of Quantiles and Histograms Without Storing
// Observations". Communications of the ACM, 28(10), pp. 1076-1085.
//
// Thread safety: not thread-safe; callers serialize access.
type latencyQuantile struct {
	p          float64
	q          [5]float64
	n          [5]int
	np         [5]float64
	dn         [5]float64
	count      int
	initBuffer [5]float64
}

func newLatencyQuantile(p float64) *latencyQuantile {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &latencyQuantile{p: p, dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1}}
}

func (q *latencyQuantile) Update(x float64) {
	q.count++
	if q.count <= 5 {
		q.initBuffer[q.count-1] = x
		if q.count == 5 {
			q.initialize()
		}
		return
	}

	var k int
	switch {
	case x < q.q[0]:
		q.q[0] = x
		k = 0
	case x >= q.q[4]:
		q.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if q.q[k] <= x && x < q.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		q.n[i]++
	}
	for i := 0; i < 5; i++ {
		q.np[i] += q.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := q.np[i] - float64(q.n[i])
		if (d >= 1 && q.n[i+1]-q.n[i] > 1) || (d <= -1 && q.n[i-1]-q.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := q.parabolic(i, sign)
			if q.q[i-1] < qPrime && qPrime < q.q[i+1] {
				q.q[i] = qPrime
			} else {
				q.q[i] = q.linear(i, sign)
			}
			q.n[i] += sign
		}
	}
}

func (q *latencyQuantile) initialize() {
	for i := 1; i < 5; i++ {
		key := q.initBuffer[i]
		j := i - 1
		for j >= 0 && q.initBuffer[j] > key {
			q.initBuffer[j+1] = q.initBuffer[j]
			j--
		}
		q.initBuffer[j+1] = key
	}
	for i := 0; i < 5; i++ {
		q.q[i] = q.initBuffer[i]
		q.n[i] = i
	}
	q.np = [5]float64{0, 2 * q.p, 4 * q.p, 2 + 2*q.p, 4}
}

func (q *latencyQuantile) parabolic(i, d int) float64 {
	df := float64(d)
	ni, niPrev, niNext := float64(q.n[i]), float64(q.n[i-1]), float64(q.n[i+1])
	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (q.q[i+1] - q.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (q.q[i] - q.q[i-1]) / (ni - niPrev)
	return q.q[i] + term1*(term2+term3)
}

func (q *latencyQuantile) linear(i, d int) float64 {
	if d == 1 {
		return q.q[i] + (q.q[i+1]-q.q[i])/float64(q.n[i+1]-q.n[i])
	}
	return q.q[i] - (q.q[i]-q.q[i-1])/float64(q.n[i]-q.n[i-1])
}

// Quantile returns the current estimated value at q.p.
func (q *latencyQuantile) Quantile() float64 {
	if q.count == 0 {
		return 0
	}
	if q.count < 5 {
		sorted := make([]float64, q.count)
		copy(sorted, q.initBuffer[:q.count])
		for i := 1; i < q.count; i++ {
			key := sorted[i]
			j := i - 1
			for j >= 0 && sorted[j] > key {
				sorted[j+1] = sorted[j]
				j--
			}
			sorted[j+1] = key
		}
		idx := int(float64(q.count-1) * q.p)
		if idx >= q.count {
			idx = q.count - 1
		}
		return sorted[idx]
	}
	return q.q[2]
}

// latencyQuantileSet tracks P50/P90/P99 concurrently over one stream of
// observations, grounded on eventloop.pSquareMultiQuantile.
type latencyQuantileSet struct {
	estimators [3]*latencyQuantile
	count      int
	sum        float64
	max        float64
}

func newLatencyQuantileSet() *latencyQuantileSet {
	return &latencyQuantileSet{
		estimators: [3]*latencyQuantile{newLatencyQuantile(0.50), newLatencyQuantile(0.90), newLatencyQuantile(0.99)},
		max:        -math.MaxFloat64,
	}
}

func (s *latencyQuantileSet) Update(x float64) {
	s.count++
	s.sum += x
	if x > s.max {
		s.max = x
	}
	for _, e := range s.estimators {
		e.Update(x)
	}
}

func (s *latencyQuantileSet) P50() float64 { return s.estimators[0].Quantile() }
func (s *latencyQuantileSet) P90() float64 { return s.estimators[1].Quantile() }
func (s *latencyQuantileSet) P99() float64 { return s.estimators[2].Quantile() }


