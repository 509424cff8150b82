package htmltree

// FindAll returns every descendant of n (n itself excluded) for which match
// returns true, in document order.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Elements returns every descendant element with the given tag.
func (n *Node) Elements(tag string) []*Node {
	return n.FindAll(func(c *Node) bool { return c.Tag == tag })
}

// ElementsByClass returns every descendant element with the given tag that
// carries class.
func (n *Node) ElementsByClass(tag, class string) []*Node {
	return n.FindAll(func(c *Node) bool { return c.Tag == tag && c.HasClass(class) })
}

// NestedMatches returns, in document order, every descendant element named tag
// that has at least depth-1 ancestors also named tag. For tag "tr" and depth 3
// this is the CSS descendant pattern "tr tr tr": a row inside a row inside a row.
// Outer rows that satisfy the pattern are returned as well as the innermost ones.
func (n *Node) NestedMatches(tag string, depth int) []*Node {
	var out []*Node
	var walk func(cur *Node, ancestors int)
	walk = func(cur *Node, ancestors int) {
		for _, c := range cur.Children {
			if !c.IsElement() {
				continue
			}
			below := ancestors
			if c.Tag == tag {
				if ancestors >= depth-1 {
					out = append(out, c)
				}
				below++
			}
			walk(c, below)
		}
	}
	walk(n, 0)
	return out
}
