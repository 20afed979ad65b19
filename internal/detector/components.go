package detector

import "github.com/MeKo-Tech/gabarito/internal/mempool"

// component describes one labeled region. start is the raster index of its
// first pixel in scan order.
type component struct {
	start  int
	size   int
	border bool
}

var (
	offsets4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	offsets8 = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// labelComponents labels the pixels for which member returns true with BFS.
// Labels are numbered from 1 in raster discovery order; comps[label-1]
// holds the statistics of each label. labels comes from mempool.Ints.
func labelComponents(w, h int, member func(i int) bool, eight bool) ([]int, []component) {
	labels := mempool.Ints.Get(w * h)
	comps := make([]component, 0, 64)
	queue := make([]int, 0, 1024)
	nbs := offsets4[:]
	if eight {
		nbs = offsets8[:]
	}

	for i := range labels {
		if labels[i] != 0 || !member(i) {
			continue
		}
		label := len(comps) + 1
		st := component{start: i}
		labels[i] = label
		queue = append(queue[:0], i)
		for qi := 0; qi < len(queue); qi++ {
			cur := queue[qi]
			x, y := cur%w, cur/w
			st.size++
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				st.border = true
			}
			for _, d := range nbs {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if labels[ni] == 0 && member(ni) {
					labels[ni] = label
					queue = append(queue, ni)
				}
			}
		}
		comps = append(comps, st)
	}
	return labels, comps
}
