package catalog

import "furnistore/storefront/internal/domain"

// Filter returns the non-archived products visible under path, in the order
// they were received. It has no side effects and depends only on its inputs.
//
//   - empty path: every non-archived product
//   - unresolvable path: nothing
//   - leaf: products tagged with the leaf label
//   - section: products tagged with any leaf anywhere beneath it
//   - section without leaves: products tagged with the section label itself
func Filter(tree *Tree, products []domain.Product, path Path) []domain.Product {
	base := domain.Available(products)
	if path.IsAll() {
		return base
	}

	match, ok := tree.matcher(path)
	if !ok {
		return []domain.Product{}
	}

	out := make([]domain.Product, 0, len(base))
	for _, p := range base {
		if match(p.Category) {
			out = append(out, p)
		}
	}
	return out
}

// Categories reports the tags a product may carry to be visible under path.
// The second result is false when path does not resolve.
func (t *Tree) Categories(path Path) ([]string, bool) {
	node, ok := t.Resolve(path)
	if !ok {
		return nil, false
	}
	if path.IsAll() {
		return LeafLabelsUnder(node), true
	}
	if leaves := LeafLabelsUnder(node); len(leaves) > 0 {
		return leaves, true
	}
	// Leaf, or a section with nothing beneath it. The hand-authored tree never
	// has the latter, but an empty section still matches its own label.
	return []string{path.Last()}, true
}

func (t *Tree) matcher(path Path) (func(category string) bool, bool) {
	tags, ok := t.Categories(path)
	if !ok {
		return nil, false
	}

	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return func(category string) bool {
		_, hit := set[category]
		return hit
	}, true
}
