package sorting

import "github.com/aanand-mishra/student-records/internal/types"

// bubbleSort repeatedly swaps adjacent out-of-order pairs. A pass without
// swaps ends it early.
func bubbleSort(s []types.Student, less lessFn) {
	for n := len(s); n > 1; n-- {
		swapped := false
		for i := 1; i < n; i++ {
			if less(s[i], s[i-1]) {
				s[i], s[i-1] = s[i-1], s[i]
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}

// insertionSort grows a sorted prefix, shifting larger elements right to
// open a slot for each new one.
func insertionSort(s []types.Student, less lessFn) {
	for i := 1; i < len(s); i++ {
		cur := s[i]
		j := i - 1
		for j >= 0 && less(cur, s[j]) {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = cur
	}
}

// mergeSort returns a sorted copy of s. On ties the left element wins,
// which keeps the sort stable.
func mergeSort(s []types.Student, less lessFn) []types.Student {
	if len(s) <= 1 {
		out := make([]types.Student, len(s))
		copy(out, s)
		return out
	}

	mid := len(s) / 2
	left := mergeSort(s[:mid], less)
	right := mergeSort(s[mid:], less)
	return merge(left, right, less)
}

func merge(left, right []types.Student, less lessFn) []types.Student {
	out := make([]types.Student, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if less(right[j], left[i]) {
			out = append(out, right[j])
			j++
		} else {
			out = append(out, left[i])
			i++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}
