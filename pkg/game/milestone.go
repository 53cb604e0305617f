package game

var milestones = map[int64]bool{
	69:   true,
	420:  true,
	777:  true,
	1000: true,
	1337: true,
}

// IsMilestone reports whether n is a celebrated count: one of the fixed
// set above, or any five-plus digit round number (10000, 20000, 100000...).
// In extreme mode a milestone may be double-counted.
func IsMilestone(n int64) bool {
	if milestones[n] {
		return true
	}
	if n < 10000 {
		return false
	}
	for n%10 == 0 {
		n /= 10
	}
	return n <= 9
}
