package extractor

import (
	"regexp"
	"strings"

	"page_structure/domain/entities"
)

var repeatedSeparators = regexp.MustCompile(`;+`)

// pruneOrphanLabels drops labels left without children once their own
// subtree has been pruned
func pruneOrphanLabels(nodes []*entities.ElementNode) []*entities.ElementNode {
	kept := make([]*entities.ElementNode, 0, len(nodes))
	for _, node := range nodes {
		node.Children = pruneOrphanLabels(node.Children)
		if node.TagName == "label" && len(node.Children) == 0 {
			continue
		}
		kept = append(kept, node)
	}
	return kept
}

// dedupText removes from each node's text the text of its options and of
// its children. The result only depends on the captured text, so running it
// again changes nothing.
func dedupText(node *entities.ElementNode) {
	text := node.CapturedText
	if len(node.Children) == 0 && len(node.Options) == 0 {
		node.Text = text
		return
	}
	for _, opt := range node.Options {
		text = removeFirst(text, opt.Text)
	}
	for _, child := range node.Children {
		text = removeFirst(text, child.CapturedText)
		dedupText(child)
	}
	text = repeatedSeparators.ReplaceAllString(text, ";")
	node.Text = strings.Trim(text, ";")
}

// dedupContext drops a child's context when it repeats its parent's, and
// strips the parent's text out of it otherwise. Run after dedupText.
func dedupContext(node *entities.ElementNode) {
	for _, child := range node.Children {
		dedupContext(child)
		switch {
		case child.CapturedContext == "":
			child.Context = ""
		case child.CapturedContext == node.CapturedContext:
			child.Context = ""
		default:
			child.Context = removeFirst(child.CapturedContext, node.Text)
		}
	}
}

// postProcess prunes the forest and deduplicates text and context
func postProcess(forest []*entities.ElementNode) []*entities.ElementNode {
	forest = pruneOrphanLabels(forest)
	for _, root := range forest {
		root.Context = root.CapturedContext
		dedupText(root)
		dedupContext(root)
	}
	return forest
}

func removeFirst(s, sub string) string {
	if sub == "" {
		return s
	}
	return strings.Replace(s, sub, "", 1)
}

// crossLink points every element whose text or context contains a
// listbox's text at that listbox
func crossLink(registry []*entities.ElementNode) {
	for _, listbox := range registry {
		if listbox.Attributes.Str("role") != "listbox" || listbox.Text == "" {
			continue
		}
		for _, other := range registry {
			if other.ID == listbox.ID {
				continue
			}
			if (other.Text != "" && strings.Contains(other.Text, listbox.Text)) ||
				(other.Context != "" && strings.Contains(other.Context, listbox.Text)) {
				other.LinkTo(listbox.ID)
			}
		}
	}
}

// validate checks that every forest node is registered under its own id
// exactly once
func validate(registry, forest []*entities.ElementNode) error {
	for i, node := range registry {
		if node == nil {
			return &TreeError{ID: i, Reason: "missing from registry"}
		}
		if node.ID != i {
			return &TreeError{ID: node.ID, Reason: "registered out of order"}
		}
	}
	seen := make(map[int]bool, len(registry))
	var err error
	for _, root := range forest {
		root.Walk(func(n *entities.ElementNode) {
			if err != nil {
				return
			}
			switch {
			case n.ID < 0 || n.ID >= len(registry) || registry[n.ID] != n:
				err = &TreeError{ID: n.ID, Reason: "not in registry"}
			case seen[n.ID]:
				err = &TreeError{ID: n.ID, Reason: "reachable twice"}
			default:
				seen[n.ID] = true
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
