package dw1000

// Diagnostics is the signal quality snapshot the device computes during
// leading edge detection. It is only valid immediately after a receiver
// event and must be read out before the next cycle overwrites it.
type Diagnostics struct {
	// FirstPath is the first path index reported by the LDE algorithm,
	// a 10.6 fixed point value. Divide by 64 for the integer sample index.
	FirstPath uint16

	// FirstPathAmp1, FirstPathAmp2 and FirstPathAmp3 are the magnitudes of
	// the accumulator taps at, one after and two after the first path.
	FirstPathAmp1 uint16
	FirstPathAmp2 uint16
	FirstPathAmp3 uint16

	// StdNoise is the standard deviation of the CIR noise estimate.
	StdNoise uint16

	// MaxNoise is the maximum noise level seen during LDE.
	MaxNoise uint16

	// MaxGrowthCIR is the channel impulse response max growth, used with
	// RXPreamCount for receive power estimation.
	MaxGrowthCIR uint16

	// RXPreamCount is the preamble symbol count accumulated over.
	RXPreamCount uint16
}

// FirstPathIndex returns the integer part of the fixed point first path
// index, usable as a CIR sample offset.
func (d *Diagnostics) FirstPathIndex() int {
	return int(d.FirstPath / 64)
}
