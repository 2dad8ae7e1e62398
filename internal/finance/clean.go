package finance

// dropMissing removes null and non-positive prices, keeping timestamps and
// values aligned.
func dropMissing(ts []int64, px []*float64) ([]int64, []float64) {
	if len(ts) != len(px) {
		n := len(ts)
		if len(px) < n {
			n = len(px)
		}
		ts = ts[:n]
		px = px[:n]
	}
	outTs := make([]int64, 0, len(ts))
	outPx := make([]float64, 0, len(px))
	for i := 0; i < len(ts); i++ {
		if px[i] == nil || *px[i] <= 0 {
			continue
		}
		outTs = append(outTs, ts[i])
		outPx = append(outPx, *px[i])
	}
	return outTs, outPx
}
