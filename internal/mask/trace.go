package mask

import "image"

// Edge directions in pixel space (y grows downward). Turning right is +1.
const (
	east = iota
	south
	west
	north
)

var step = [4]image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// edge is one unit side of a pixel, directed so that the pixel lies on its
// right-hand side.
type edge struct {
	from image.Point
	dir  int
}

func (e edge) to() image.Point { return e.from.Add(step[e.dir]) }

// ring is a closed sequence of pixel-corner vertices (first vertex not
// repeated). Shells have positive signedArea, holes negative.
type ring []image.Point

// signedArea uses the shoelace formula in pixel space.
func (r ring) signedArea() float64 {
	var sum int
	for i := range r {
		a, b := r[i], r[(i+1)%len(r)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return float64(sum) / 2
}

// traceLabels returns the boundary rings of every labelled component.
// labels holds one label per pixel, row-major; label 0 is background and
// components are numbered 1..n-1.
func traceLabels(labels []int32, width, height, n int) [][]ring {
	edges := make([][]edge, n)
	at := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return labels[y*width+x]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			l := labels[y*width+x]
			if l <= 0 {
				continue
			}
			if at(x, y-1) != l {
				edges[l] = append(edges[l], edge{image.Pt(x, y), east})
			}
			if at(x+1, y) != l {
				edges[l] = append(edges[l], edge{image.Pt(x+1, y), south})
			}
			if at(x, y+1) != l {
				edges[l] = append(edges[l], edge{image.Pt(x+1, y+1), west})
			}
			if at(x-1, y) != l {
				edges[l] = append(edges[l], edge{image.Pt(x, y+1), north})
			}
		}
	}

	out := make([][]ring, n)
	for l := 1; l < n; l++ {
		out[l] = chain(edges[l])
	}
	return out
}

// chain links the edges of one component into closed rings.
//
// Where two pixels of the component meet only at a corner, the vertex has two
// outgoing edges and the walk turns left, away from the current pixel. That
// keeps every shell and hole simple: holes may touch their shell at a single
// vertex but no ring crosses or touches itself.
func chain(edges []edge) []ring {
	out := make(map[image.Point][]int, len(edges))
	for i, e := range edges {
		out[e.from] = append(out[e.from], i)
	}
	next := func(i int) int {
		e := edges[i]
		cand := out[e.to()]
		if len(cand) == 1 {
			return cand[0]
		}
		left := (e.dir + 3) % 4
		for _, j := range cand {
			if edges[j].dir == left {
				return j
			}
		}
		return cand[0]
	}

	used := make([]bool, len(edges))
	var rings []ring
	for start := range edges {
		if used[start] {
			continue
		}
		var r ring
		prevDir := -1
		for i := start; !used[i]; i = next(i) {
			used[i] = true
			if edges[i].dir != prevDir {
				r = append(r, edges[i].from)
				prevDir = edges[i].dir
			}
		}
		// The walk may have started mid-way along a straight run.
		if len(r) > 1 && edges[start].dir == prevDir {
			r = r[1:]
		}
		rings = append(rings, r)
	}
	return rings
}
