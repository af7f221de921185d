package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// --------------------------------------------------
// MENU TREE (AS STORED ON THE RESTAURANT RECORD)
// --------------------------------------------------

// MenuRecord is one raw node of a restaurant's menu JSON:
// either a category (children, no price) or a leaf item.
type MenuRecord struct {
	Info     MenuInfo `json:"info"`
	Children []string `json:"children"`
}

type MenuInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	BasePoints  int              `json:"base_points,omitempty"`
	PointCost   int              `json:"point_cost,omitempty"`
	ForDate     *time.Time       `json:"for_date,omitempty"`
}

// --------------------------------------------------
// INDEXED NODE
// --------------------------------------------------

// Node is an indexed menu node. Leaves (no children) carry a price;
// categories never do.
type Node struct {
	ID          string
	Name        string
	Description string
	Children    []string
	Price       *decimal.Decimal
	BasePoints  int
	PointCost   int
	ForDate     *time.Time

	// PathTags holds every ancestor category id, used for
	// category-membership checks.
	PathTags map[string]struct{}
}

// Leaf reports whether the node is a purchasable leaf item.
func (n *Node) Leaf() bool {
	return len(n.Children) == 0
}

// Priceable reports whether the node carries a price of its own.
func (n *Node) Priceable() bool {
	return n.Price != nil
}

// Under reports whether the node sits under the given category id
// (or is that id itself).
func (n *Node) Under(categoryID string) bool {
	if n.ID == categoryID {
		return true
	}
	_, ok := n.PathTags[categoryID]
	return ok
}

// --------------------------------------------------
// ITEM REFERENCE
// --------------------------------------------------

// Item references a purchasable leaf plus its modifiers. Known
// modifiers ("double", "triple") multiply price; anything else is
// free-text and never changes it.
type Item struct {
	ID        string   `json:"id"`
	Modifiers []string `json:"modifiers"`
}

// Equal reports whether two item references are the same purchasable,
// comparing the modifier sequence in order.
func (i Item) Equal(other Item) bool {
	if i.ID != other.ID || len(i.Modifiers) != len(other.Modifiers) {
		return false
	}
	for k := range i.Modifiers {
		if i.Modifiers[k] != other.Modifiers[k] {
			return false
		}
	}
	return true
}
