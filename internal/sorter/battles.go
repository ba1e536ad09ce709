package sorter

// CountBattles estimates the placement work of a merge sort over n items.
//
// Each merge level contributes left+right (one slot per placed item, not
// one per comparison), mirroring the recursive split used by Sort. The
// result is only used to scale the progress percentage.
//
//	CountBattles(4) == 4 + CountBattles(2) + CountBattles(2) == 8
func CountBattles(n int) int {
	if n <= 1 {
		return 0
	}
	mid := (n + 1) / 2
	return mid + (n - mid) + CountBattles(mid) + CountBattles(n-mid)
}
