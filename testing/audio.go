package testing

import "math"

// CreateSineAudio returns `count` samples of a sine wave in [0, 127] with the
// given period in samples.
func CreateSineAudio(count, period int) []byte {
	samples := make([]byte, count)
	for i := range samples {
		angle := 2 * math.Pi * float64(i) / float64(period)
		samples[i] = byte(math.Round(63.5 + 63.5*math.Sin(angle)))
	}
	return samples
}

// CreateSquareAudio returns `count` samples of a square wave alternating
// between 16 and 112 every half period.
func CreateSquareAudio(count, period int) []byte {
	samples := make([]byte, count)
	for i := range samples {
		if (i/(period/2))%2 == 0 {
			samples[i] = 16
		} else {
			samples[i] = 112
		}
	}
	return samples
}
