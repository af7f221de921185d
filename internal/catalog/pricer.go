package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrItemNotPriceable is returned when a referenced id has no price
// of its own (a category) or does not exist in the catalog.
var ErrItemNotPriceable = errors.New("item not priceable")

// Known modifier multipliers. Unrecognized modifier strings are
// custom text and never change price.
var modifierMultipliers = map[string]decimal.Decimal{
	"double": decimal.NewFromInt(2),
	"triple": decimal.NewFromInt(3),
}

// Price computes the unit price of an item: the leaf's base price
// multiplied by the product of every known modifier multiplier.
func (ix *Index) Price(item Item) (decimal.Decimal, error) {
	node := ix.Node(item.ID)
	if node == nil || !node.Priceable() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrItemNotPriceable, item.ID)
	}

	price := *node.Price
	for _, mod := range item.Modifiers {
		if mult, ok := modifierMultipliers[strings.ToLower(mod)]; ok {
			price = price.Mul(mult)
		}
	}
	return price, nil
}

// DisplayName renders an item for receipts and cart rows: the node's
// name with modifiers appended as a parenthesized, comma-joined,
// title-cased suffix.
func (ix *Index) DisplayName(item Item) (string, error) {
	node := ix.Node(item.ID)
	if node == nil {
		return "", fmt.Errorf("%w: %s", ErrItemNotPriceable, item.ID)
	}
	if len(item.Modifiers) == 0 {
		return node.Name, nil
	}

	parts := make([]string, len(item.Modifiers))
	for i, mod := range item.Modifiers {
		parts[i] = titleCase(mod)
	}
	return fmt.Sprintf("%s (%s)", node.Name, strings.Join(parts, ", ")), nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
