package model

// DendrogramLink is one U-shaped connector: four points running from the
// left child up to the merge height and down to the right child.
type DendrogramLink struct {
	X, Y   [4]float64
	Merge  int // index into LinkageMatrix.Merges
	Height float64
}

// Dendrogram is the drawable layout of a linkage matrix. Leaves sit at
// x = 10*i + 5 in Leaves order, matching SciPy's coordinates.
type Dendrogram struct {
	Leaves []int
	Links  []DendrogramLink
}

// Layout computes leaf order and connector geometry for z.
func (z *LinkageMatrix) Layout() *Dendrogram {
	n := z.N
	dg := &Dendrogram{Leaves: make([]int, 0, n)}
	if n == 0 {
		return dg
	}
	if n == 1 {
		dg.Leaves = append(dg.Leaves, 0)
		return dg
	}

	xs := make([]float64, 2*n-1)
	ys := make([]float64, 2*n-1)

	// Iterative post-order walk from the root keeps deep trees off the stack.
	type frame struct {
		node    int
		visited bool
	}
	stack := []frame{{node: 2*n - 2}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node < n {
			xs[f.node] = float64(10*len(dg.Leaves) + 5)
			dg.Leaves = append(dg.Leaves, f.node)
			continue
		}
		m := z.Merges[f.node-n]
		if !f.visited {
			stack = append(stack, frame{node: f.node, visited: true}, frame{node: m.B}, frame{node: m.A})
			continue
		}
		xa, xb := xs[m.A], xs[m.B]
		xs[f.node] = (xa + xb) / 2
		ys[f.node] = m.Distance
		dg.Links = append(dg.Links, DendrogramLink{
			X:      [4]float64{xa, xa, xb, xb},
			Y:      [4]float64{ys[m.A], m.Distance, m.Distance, ys[m.B]},
			Merge:  f.node - n,
			Height: m.Distance,
		})
	}
	return dg
}
