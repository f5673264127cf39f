package hanoi

import (
	"fmt"
	"strconv"
	"strings"
)

// PegCount is fixed; the puzzle always has three pegs.
const PegCount = 3

// Pegs holds the disks on each peg ordered bottom to top. The last element of
// a peg is its topmost disk.
type Pegs [PegCount][]int

// InitialState returns all n disks on peg 0, largest at the bottom.
func InitialState(n int) Pegs {
	return Pegs{descending(n), {}, {}}
}

// GoalState returns all n disks on peg 2, largest at the bottom.
func GoalState(n int) Pegs {
	return Pegs{{}, {}, descending(n)}
}

func descending(n int) []int {
	if n < 0 {
		n = 0
	}
	disks := make([]int, 0, n)
	for d := n; d >= 1; d-- {
		disks = append(disks, d)
	}
	return disks
}

// Clone deep-copies every peg. Empty pegs come back as empty, non-nil slices
// so they encode as [] rather than null.
func (p Pegs) Clone() Pegs {
	var out Pegs
	for i, peg := range p {
		out[i] = append(make([]int, 0, len(peg)), peg...)
	}
	return out
}

// Equal reports structural equality: same disks, same order, same pegs.
func (p Pegs) Equal(other Pegs) bool {
	for i := range p {
		if len(p[i]) != len(other[i]) {
			return false
		}
		for j := range p[i] {
			if p[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Top returns the topmost disk of peg i.
func (p Pegs) Top(i int) (int, bool) {
	if i < 0 || i >= PegCount || len(p[i]) == 0 {
		return 0, false
	}
	return p[i][len(p[i])-1], true
}

// DiskCount returns the total number of disks across all pegs.
func (p Pegs) DiskCount() int {
	total := 0
	for _, peg := range p {
		total += len(peg)
	}
	return total
}

// Validate checks that p is a reachable state for n disks: every peg strictly
// decreasing bottom to top and each disk 1..n present exactly once.
func (p Pegs) Validate(n int) error {
	seen := make(map[int]bool, n)
	for i, peg := range p {
		for j, disk := range peg {
			if disk < 1 || disk > n {
				return fmt.Errorf("peg %d holds unknown disk %d", i, disk)
			}
			if seen[disk] {
				return fmt.Errorf("disk %d appears more than once", disk)
			}
			seen[disk] = true
			if j > 0 && peg[j-1] <= disk {
				return fmt.Errorf("peg %d has disk %d on top of disk %d", i, disk, peg[j-1])
			}
		}
	}
	if len(seen) != n {
		return fmt.Errorf("expected %d disks, found %d", n, len(seen))
	}
	return nil
}

// String renders the pegs the way agents see them, e.g. [[3, 2, 1], [], []].
func (p Pegs) String() string {
	parts := make([]string, len(p))
	for i, peg := range p {
		disks := make([]string, len(peg))
		for j, d := range peg {
			disks[j] = strconv.Itoa(d)
		}
		parts[i] = "[" + strings.Join(disks, ", ") + "]"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
