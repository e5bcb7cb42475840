package core

// Zero silences buf.
func Zero(buf []float64) {
	clear(buf)
}

// Fill sets all values in buf to v.
func Fill(buf []float64, v float64) {
	for i := range buf {
		buf[i] = v
	}
}

// GainRamp writes a linear gain ramp from "from" (exclusive) to "to"
// (inclusive) into dst, so the last sample of a block lands exactly on the
// target. A constant gain fills dst.
func GainRamp(dst []float64, from, to float64) {
	if from == to || len(dst) == 0 {
		Fill(dst, to)
		return
	}
	step := (to - from) / float64(len(dst))
	for i := range dst {
		dst[i] = from + step*float64(i+1)
	}
	dst[len(dst)-1] = to
}
