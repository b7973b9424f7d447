package measurement

import (
	"math"
)

// fold calls f for every value of every measurement, keyed by value name.
func fold(measurements []StorableMeasurement, f func(k string, v float32)) {
	for i := range measurements {
		for k, v := range measurements[i].ValueMap() {
			f(k, v)
		}
	}
}

// Mean returns the mean of each value over the measurements that have it.
func Mean(measurements []StorableMeasurement) map[string]float32 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	fold(measurements, func(k string, v float32) {
		sums[k] += float64(v)
		counts[k]++
	})

	means := make(map[string]float32)
	for k, v := range sums {
		means[k] = float32(v / float64(counts[k]))
	}
	return means
}

// StdDev returns the population standard deviation of each value.
func StdDev(measurements []StorableMeasurement) map[string]float32 {
	avg := Mean(measurements)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	fold(measurements, func(k string, v float32) {
		sums[k] += math.Pow(float64(v-avg[k]), 2)
		counts[k]++
	})

	devs := make(map[string]float32)
	for k, v := range sums {
		devs[k] = float32(math.Sqrt(v / float64(counts[k])))
	}
	return devs
}

func Min(measurements []StorableMeasurement) map[string]float32 {
	x := make(map[string]float32)
	fold(measurements, func(k string, v float32) {
		if cur, ok := x[k]; !ok || v < cur {
			x[k] = v
		}
	})
	return x
}

func Max(measurements []StorableMeasurement) map[string]float32 {
	x := make(map[string]float32)
	fold(measurements, func(k string, v float32) {
		if cur, ok := x[k]; !ok || v > cur {
			x[k] = v
		}
	})
	return x
}
