package orgdoc

import "github.com/niklasfasching/go-org/org"

// Walk visits node and its descendants depth-first, pre-order. The
// callback returns false to prune the subtree below the current node.
func Walk(node org.Node, fn func(org.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range childNodes(node) {
		Walk(child, fn)
	}
}

// WalkAll walks every node of a node list.
func WalkAll(nodes []org.Node, fn func(org.Node) bool) {
	for _, node := range nodes {
		Walk(node, fn)
	}
}

// childNodes enumerates the nested nodes of the go-org node kinds the
// build cares about. Leaf kinds return nil.
func childNodes(node org.Node) []org.Node {
	switch n := node.(type) {
	case org.Headline:
		return n.Children
	case org.Paragraph:
		return n.Children
	case org.Block:
		return n.Children
	case org.Drawer:
		return n.Children
	case org.List:
		return n.Items
	case org.ListItem:
		return n.Children
	case org.DescriptiveListItem:
		return append(append([]org.Node{}, n.Term...), n.Details...)
	case org.Emphasis:
		return n.Content
	case org.RegularLink:
		return n.Description
	case org.FootnoteDefinition:
		return n.Children
	case org.NodeWithMeta:
		return []org.Node{n.Node}
	case org.NodeWithName:
		return []org.Node{n.Node}
	default:
		return nil
	}
}
