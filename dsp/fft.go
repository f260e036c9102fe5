package dsp

// Fast Fourier Transform (FFT)
//
// Cooley-Tukey radix-2 FFT used by every frequency-domain step of the
// biomarker pipeline: the MFCC filter bank, the spectral descriptors and the
// tremor-band analysis of the amplitude envelope.
//
// The input length must be padded to a power of two by the caller (see
// NextPowerOfTwo); the transform itself is the textbook divide-and-conquer
// formulation over complex twiddle factors.

import (
	"math"
	"math/cmplx"
)

func FFT(input []float64) []complex128 {
	complexArray := make([]complex128, len(input))
	for i, v := range input {
		complexArray[i] = complex(v, 0)
	}
	return recursiveFFT(complexArray)
}

func recursiveFFT(complexArray []complex128) []complex128 {
	N := len(complexArray)
	if N <= 1 {
		return complexArray
	}

	even := make([]complex128, N/2)
	odd := make([]complex128, N/2)
	for i := 0; i < N/2; i++ {
		even[i] = complexArray[2*i]
		odd[i] = complexArray[2*i+1]
	}

	even = recursiveFFT(even)
	odd = recursiveFFT(odd)

	fftResult := make([]complex128, N)
	for k := 0; k < N/2; k++ {
		t := complex(math.Cos(-2*math.Pi*float64(k)/float64(N)), math.Sin(-2*math.Pi*float64(k)/float64(N)))
		fftResult[k] = even[k] + t*odd[k]
		fftResult[k+N/2] = even[k] - t*odd[k]
	}

	return fftResult
}

// MagnitudeSpectrum pads the signal to a power of two, runs the FFT and
// returns the one-sided magnitude spectrum together with the bin
// frequencies in Hz.
func MagnitudeSpectrum(samples []float64, sampleRate float64) (magnitude, freqs []float64) {
	fftSize := NextPowerOfTwo(len(samples))
	buffer := make([]float64, fftSize)
	copy(buffer, samples)

	spectrum := FFT(buffer)
	binCount := fftSize/2 + 1
	magnitude = make([]float64, binCount)
	freqs = make([]float64, binCount)
	for i := 0; i < binCount; i++ {
		magnitude[i] = cmplx.Abs(spectrum[i])
		freqs[i] = float64(i) * sampleRate / float64(fftSize)
	}
	return magnitude, freqs
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
