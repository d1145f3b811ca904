package reconcile

// unionFind tracks connected groups of identifiers. Records whose identifier
// sets intersect, directly or through a chain of shared identifiers, end up
// under one representative. This keeps grouping near-linear instead of
// quadratic pairwise comparison.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

// find returns the representative for id, with path compression.
func (u *unionFind) find(id string) string {
	root, ok := u.parent[id]
	if !ok {
		u.parent[id] = id
		return id
	}
	if root == id {
		return id
	}
	top := u.find(root)
	u.parent[id] = top
	return top
}

// union joins the groups containing a and b.
func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
