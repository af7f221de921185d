package cart

import (
	"errors"
	"fmt"

	"tapin/internal/catalog"
)

var (
	ErrBadQuantity  = errors.New("quantity must be positive")
	ErrLineNotFound = errors.New("cart line not found")
)

// AddItem adds quantity units of an item, pricing it from the catalog.
// If an equal item reference already exists its quantity is bumped
// instead of a new line being created.
func (c *Cart) AddItem(ix *catalog.Index, item catalog.Item, quantity int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, ErrBadQuantity
	}

	if line := c.Find(item); line != nil {
		line.Quantity += quantity
		c.Version++
		return line, nil
	}

	price, err := ix.Price(item)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	node := ix.Node(item.ID)
	line := &CartItem{
		ID:           c.NextID,
		Item:         item,
		Quantity:     quantity,
		UnitPrice:    price,
		PointsEarned: node.BasePoints,
		PointCost:    node.PointCost,
	}
	c.NextID++
	c.Items = append(c.Items, line)
	c.Version++
	return line, nil
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (c *Cart) UpdateQuantity(lineID, quantity int) error {
	if quantity < 0 {
		return ErrBadQuantity
	}
	for i, line := range c.Items {
		if line.ID != lineID {
			continue
		}
		if quantity == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			line.Quantity = quantity
		}
		c.Version++
		return nil
	}
	return ErrLineNotFound
}

// RemoveItem decrements a line by one unit, dropping it at zero.
func (c *Cart) RemoveItem(lineID int) error {
	line := c.Line(lineID)
	if line == nil {
		return ErrLineNotFound
	}
	return c.UpdateQuantity(lineID, line.Quantity-1)
}

// SelectPolicy appends a deal to the selection; re-selecting an
// already selected policy is a no-op.
func (c *Cart) SelectPolicy(policyID string) {
	for _, id := range c.SelectedPolicies {
		if id == policyID {
			return
		}
	}
	c.SelectedPolicies = append(c.SelectedPolicies, policyID)
	c.Version++
}

// DeselectPolicy removes a deal from the selection.
func (c *Cart) DeselectPolicy(policyID string) {
	for i, id := range c.SelectedPolicies {
		if id == policyID {
			c.SelectedPolicies = append(c.SelectedPolicies[:i], c.SelectedPolicies[i+1:]...)
			c.Version++
			return
		}
	}
}

// Clear drops every line and the deal selection.
func (c *Cart) Clear() {
	c.Items = nil
	c.SelectedPolicies = nil
	c.Version++
}
