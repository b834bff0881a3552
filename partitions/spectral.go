package partitions

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// bisect assigns elems to partitions [firstPart, firstPart+nparts) by
// recursive spectral bisection: elements are ordered by the Fiedler vector
// of the graph Laplacian of the induced dual subgraph and split in
// proportion to the number of partitions on each side.
//
// The Laplacian is dense, so this is meant for meshes of a few thousand
// elements per bisection level.
func bisect(g *simple.UndirectedGraph, elems []int, firstPart, nparts int, eToP []int) error {
	if nparts == 1 {
		for _, k := range elems {
			eToP[k] = firstPart
		}
		return nil
	}
	if len(elems) < nparts {
		return fmt.Errorf("cannot split %d elements into %d partitions", len(elems), nparts)
	}

	fiedler, err := fiedlerVector(g, elems)
	if err != nil {
		return err
	}
	order := make([]int, len(elems))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := fiedler[order[a]], fiedler[order[b]]
		if fa != fb {
			return fa < fb
		}
		return elems[order[a]] < elems[order[b]]
	})

	nLeft := nparts / 2
	cut := len(elems) * nLeft / nparts
	left := make([]int, 0, cut)
	right := make([]int, 0, len(elems)-cut)
	for i, idx := range order {
		if i < cut {
			left = append(left, elems[idx])
		} else {
			right = append(right, elems[idx])
		}
	}
	if err := bisect(g, left, firstPart, nLeft, eToP); err != nil {
		return err
	}
	return bisect(g, right, firstPart+nLeft, nparts-nLeft, eToP)
}

// fiedlerVector returns the eigenvector of the second smallest eigenvalue of
// the Laplacian of the subgraph induced by elems
func fiedlerVector(g *simple.UndirectedGraph, elems []int) ([]float64, error) {
	n := len(elems)
	if n < 2 {
		return make([]float64, n), nil
	}
	local := make(map[int]int, n)
	for i, k := range elems {
		local[k] = i
	}
	L := mat.NewSymDense(n, nil)
	for i, k := range elems {
		deg := 0
		for _, nb := range neighbors(g, k) {
			j, ok := local[nb]
			if !ok {
				continue
			}
			deg++
			if j > i {
				L.SetSym(i, j, -1)
			}
		}
		L.SetSym(i, i, float64(deg))
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(L, true); !ok {
		return nil, fmt.Errorf("eigen decomposition of the %d×%d dual graph Laplacian failed", n, n)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return mat.Col(nil, 1, &vecs), nil
}
