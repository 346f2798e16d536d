package geo

// Simplify reduces the line with the Douglas-Peucker algorithm. A span is
// collapsed to its endpoints when no interior point is further than tolerance
// from the segment joining them. The result is a subsequence of l that always
// keeps the first and last positions.
func Simplify(l Line, tolerance float64) Line {
	if len(l) <= 2 {
		out := make(Line, len(l))
		copy(out, l)
		return out
	}

	keep := make([]bool, len(l))
	keep[0] = true
	keep[len(l)-1] = true
	simplifySpan(l, 0, len(l)-1, tolerance, keep)

	var out Line
	for i, k := range keep {
		if k {
			out = append(out, l[i])
		}
	}
	return out
}

func simplifySpan(l Line, first, last int, tolerance float64, keep []bool) {
	if last-first < 2 {
		return
	}

	var dmax float64
	index := -1
	for i := first + 1; i < last; i++ {
		d := l[i].SegmentDistance(l[first], l[last])
		if index == -1 || d > dmax {
			dmax, index = d, i
		}
	}

	if dmax <= tolerance {
		return
	}

	keep[index] = true
	simplifySpan(l, first, index, tolerance, keep)
	simplifySpan(l, index, last, tolerance, keep)
}
