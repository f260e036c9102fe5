package voice

import (
	"math"
	"math/cmplx"

	"voice-screening/dsp"
)

const (
	mfccCount   = 13
	mfccFFTSize = 512
	mfccHopSize = 256
	melFilters  = 26
)

// MFCCMeans computes the per-coefficient mean of the first 13 mel-frequency
// cepstral coefficients over Hann-windowed frames. Returns a zero slice when
// the signal is shorter than one frame.
func MFCCMeans(samples []float64, sampleRate int) []float64 {
	means := make([]float64, mfccCount)
	if len(samples) < mfccFFTSize {
		return means
	}

	filterBank := melFilterBank(melFilters, mfccFFTSize, float64(sampleRate))
	dctTable := dctMatrix(mfccCount, melFilters)
	window := dsp.HannWindow(mfccFFTSize)

	frame := make([]float64, mfccFFTSize)
	frames := 0
	for start := 0; start+mfccFFTSize <= len(samples); start += mfccHopSize {
		for i := range frame {
			frame[i] = samples[start+i] * window[i]
		}

		spectrum := dsp.FFT(frame)
		power := make([]float64, mfccFFTSize/2+1)
		for i := range power {
			m := cmplx.Abs(spectrum[i])
			power[i] = m * m
		}

		logEnergies := make([]float64, melFilters)
		for f := 0; f < melFilters; f++ {
			var e float64
			for i, w := range filterBank[f] {
				e += w * power[i]
			}
			if e < 1e-10 {
				e = 1e-10
			}
			logEnergies[f] = math.Log(e)
		}

		for c := 0; c < mfccCount; c++ {
			var v float64
			for f := 0; f < melFilters; f++ {
				v += dctTable[c][f] * logEnergies[f]
			}
			means[c] += v
		}
		frames++
	}

	if frames > 0 {
		for c := range means {
			means[c] /= float64(frames)
		}
	}
	return means
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterBank builds triangular filters spaced evenly on the mel scale
// between 0 Hz and Nyquist, each row covering the one-sided spectrum bins.
func melFilterBank(numFilters, fftSize int, sampleRate float64) [][]float64 {
	binCount := fftSize/2 + 1
	maxMel := hzToMel(sampleRate / 2)

	// numFilters+2 edge points: each filter spans three consecutive points.
	points := make([]int, numFilters+2)
	for i := range points {
		hz := melToHz(maxMel * float64(i) / float64(numFilters+1))
		points[i] = int(math.Floor((float64(fftSize) + 1) * hz / sampleRate))
		if points[i] > binCount-1 {
			points[i] = binCount - 1
		}
	}

	bank := make([][]float64, numFilters)
	for f := 0; f < numFilters; f++ {
		bank[f] = make([]float64, binCount)
		left, center, right := points[f], points[f+1], points[f+2]
		for b := left; b < center; b++ {
			if center > left {
				bank[f][b] = float64(b-left) / float64(center-left)
			}
		}
		for b := center; b <= right && b < binCount; b++ {
			if right > center {
				bank[f][b] = float64(right-b) / float64(right-center)
			}
		}
	}
	return bank
}

// dctMatrix is the orthonormal DCT-II transform rows used to decorrelate the
// log filter-bank energies.
func dctMatrix(numCoeffs, numFilters int) [][]float64 {
	table := make([][]float64, numCoeffs)
	for c := 0; c < numCoeffs; c++ {
		table[c] = make([]float64, numFilters)
		scale := math.Sqrt(2.0 / float64(numFilters))
		if c == 0 {
			scale = math.Sqrt(1.0 / float64(numFilters))
		}
		for f := 0; f < numFilters; f++ {
			table[c][f] = scale * math.Cos(math.Pi*float64(c)*(float64(f)+0.5)/float64(numFilters))
		}
	}
	return table
}
