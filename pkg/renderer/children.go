package renderer

import "github.com/vango-dev/reactor/pkg/vdom"

// patchKeyedChildren reconciles the child lists c1 and c2 of one container.
//
// It patches the common prefix and suffix in place, then either mounts or
// unmounts the leftover range, or, when both sides have leftovers, matches
// old nodes to new ones by key (falling back to a linear scan for unkeyed
// nodes) and moves only the nodes outside the longest increasing
// subsequence of matched old positions.
func (r *Renderer) patchKeyedChildren(c1, c2 []*vdom.Node, container, parentAnchor any) {
	i := 0
	e1 := len(c1) - 1
	e2 := len(c2) - 1

	// 1. common prefix
	for i <= e1 && i <= e2 {
		if !vdom.SameType(c1[i], c2[i]) {
			break
		}
		r.Patch(c1[i], c2[i], container, nil)
		i++
	}

	// 2. common suffix
	for i <= e1 && i <= e2 {
		if !vdom.SameType(c1[e1], c2[e2]) {
			break
		}
		r.Patch(c1[e1], c2[e2], container, nil)
		e1--
		e2--
	}

	// 3. only new nodes left
	if i > e1 {
		if i <= e2 {
			anchor := r.anchorAt(c2, e2+1, parentAnchor)
			for ; i <= e2; i++ {
				r.Patch(nil, c2[i], container, anchor)
			}
		}
		return
	}

	// 4. only old nodes left
	if i > e2 {
		for ; i <= e1; i++ {
			r.unmount(c1[i], true)
		}
		return
	}

	// 5. unknown sequence
	s1, s2 := i, i

	keyToNewIndex := make(map[string]int, e2-s2+1)
	for j := s2; j <= e2; j++ {
		if c2[j].HasKey() {
			keyToNewIndex[c2[j].Key] = j
		}
	}

	patched := 0
	toBePatched := e2 - s2 + 1
	moved := false
	maxNewIndexSoFar := 0
	// newIndexToOldIndex[k] is 1 + the old index matched to c2[s2+k];
	// 0 means no match (mount).
	newIndexToOldIndex := make([]int, toBePatched)

	for k := s1; k <= e1; k++ {
		prev := c1[k]
		if patched >= toBePatched {
			// every new node is matched; the rest must go
			r.unmount(prev, true)
			continue
		}
		newIndex := -1
		if prev.HasKey() {
			if j, ok := keyToNewIndex[prev.Key]; ok && newIndexToOldIndex[j-s2] == 0 {
				newIndex = j
			}
		} else {
			for j := s2; j <= e2; j++ {
				if newIndexToOldIndex[j-s2] == 0 && vdom.SameType(prev, c2[j]) {
					newIndex = j
					break
				}
			}
		}
		if newIndex < 0 {
			r.unmount(prev, true)
			continue
		}
		newIndexToOldIndex[newIndex-s2] = k + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.Patch(prev, c2[newIndex], container, nil)
		patched++
	}

	// 6. move and mount, right to left so every anchor is already final
	var stable []int
	if moved {
		stable = LongestIncreasingSubsequence(newIndexToOldIndex)
	}
	j := len(stable) - 1
	for k := toBePatched - 1; k >= 0; k-- {
		idx := s2 + k
		next := c2[idx]
		anchor := r.anchorAt(c2, idx+1, parentAnchor)
		switch {
		case newIndexToOldIndex[k] == 0:
			r.Patch(nil, next, container, anchor)
		case moved:
			if j < 0 || k != stable[j] {
				r.Move(next, container, anchor)
			} else {
				j--
			}
		}
	}
}

// anchorAt returns the first host node among nodes[from:], or fallback when
// none of them has one (empty fragments, or the end of the list).
func (r *Renderer) anchorAt(nodes []*vdom.Node, from int, fallback any) any {
	for p := from; p < len(nodes); p++ {
		if h := r.firstHost(nodes[p]); h != nil {
			return h
		}
	}
	return fallback
}
