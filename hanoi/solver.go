package hanoi

import (
	"math"
	"math/bits"
)

// OptimalMoveCount is the length of the shortest solution for n disks,
// saturating at math.MaxInt once 2^n - 1 no longer fits.
func OptimalMoveCount(n int) int {
	switch {
	case n < 1:
		return 0
	case n >= bits.UintSize-1:
		return math.MaxInt
	}
	return 1<<n - 1
}

// Solve returns the canonical recursive solution moving n disks from peg 0
// to peg 2.
func Solve(n int) []Move {
	moves := make([]Move, 0, OptimalMoveCount(n))
	var step func(k, from, via, to int)
	step = func(k, from, via, to int) {
		if k == 0 {
			return
		}
		step(k-1, from, to, via)
		moves = append(moves, Move{Disk: k, From: from, To: to})
		step(k-1, via, from, to)
	}
	step(n, 0, 1, 2)
	return moves
}

// NextMove returns the optimal move from an arbitrary reachable state toward
// the goal, or false when the state is already solved.
func NextMove(p Pegs) (Move, bool) {
	n := p.DiskCount()
	where := make([]int, n+1)
	for i, peg := range p {
		for _, d := range peg {
			if d >= 1 && d <= n {
				where[d] = i
			}
		}
	}
	return nextMove(where, n, 2)
}

// nextMove finds the first move that brings disks 1..k onto target.
func nextMove(where []int, k, target int) (Move, bool) {
	for k >= 1 && where[k] == target {
		k--
	}
	if k == 0 {
		return Move{}, false
	}
	from := where[k]
	spare := PegCount - from - target
	if m, ok := nextMove(where, k-1, spare); ok {
		return m, true
	}
	return Move{Disk: k, From: from, To: target}, true
}
