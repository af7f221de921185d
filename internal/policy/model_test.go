package policy

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDefinitionCodecRoundTrip(t *testing.T) {
	maxItems := 2
	def := Definition{
		Tag: TagDeal,
		Conditions: []Condition{
			MinimumCartTotal{Amount: decimal.RequireFromString("20.00")},
			MinimumQuantity{Items: []string{"drinks"}, Quantity: 2},
			TimeRange{BeginTime: "16:00", EndTime: "19:00", AllowedDays: []string{"friday"}},
		},
		Action: ApplyPercentDiscount{
			Items:            []string{"drinks"},
			Amount:           decimal.RequireFromString("0.5"),
			MaxEffectedItems: maxItems,
		},
	}

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var got Definition
	require.NoError(t, json.Unmarshal(data, &got))

	require.Equal(t, TagDeal, got.Tag)
	require.Len(t, got.Conditions, 3)
	require.IsType(t, MinimumCartTotal{}, got.Conditions[0])
	require.IsType(t, MinimumQuantity{}, got.Conditions[1])
	require.IsType(t, TimeRange{}, got.Conditions[2])

	action, ok := got.Action.(ApplyPercentDiscount)
	require.True(t, ok)
	require.Equal(t, []string{"drinks"}, action.Items)
	require.True(t, action.Amount.Equal(decimal.RequireFromString("0.5")))
	require.Equal(t, 2, action.MaxEffectedItems)
}

func TestDefinitionCodecTaggedShape(t *testing.T) {
	def := Definition{
		Tag:        TagLoyaltyReward,
		Conditions: []Condition{MinimumUserPoints{Amount: 100}},
		Action:     AddFreeItem{Items: []string{"beer"}, Quantity: 1},
	}

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var raw struct {
		Conditions []map[string]any `json:"conditions"`
		Action     map[string]any   `json:"action"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "minimum_user_points", raw.Conditions[0]["type"])
	require.Equal(t, "add_free_item", raw.Action["type"])
}

func TestDefinitionCodecUnknownKinds(t *testing.T) {
	var def Definition

	err := json.Unmarshal([]byte(`{"tag":"deal","conditions":[{"type":"lunar_phase"}]}`), &def)
	require.ErrorContains(t, err, "unknown condition type")

	err = json.Unmarshal([]byte(`{"tag":"deal","conditions":[],"action":{"type":"teleport"}}`), &def)
	require.ErrorContains(t, err, "unknown action type")
}

func TestDefinitionCodecAllActions(t *testing.T) {
	amount := decimal.RequireFromString("3.00")
	actions := []Action{
		AddFreeItem{Items: []string{"beer"}, Quantity: 2},
		ApplyPercentDiscount{Items: []string{"food"}, Amount: decimal.RequireFromString("0.25")},
		ApplyFixedDiscount{Items: []string{"food"}, Amount: amount, MaxEffectedItems: 1},
		ApplyPointMultiplier{Items: []string{"drinks"}, Amount: decimal.NewFromInt(2)},
		ApplyOrderPointMultiplier{Amount: decimal.NewFromInt(3)},
		ApplyFixedOrderDiscount{Amount: amount},
		ApplyOrderPercentDiscount{Amount: decimal.RequireFromString("0.1")},
		ApplyBlanketPrice{Items: []string{"drinks"}, Amount: decimal.RequireFromString("10.00")},
		AddToUserCredit{Amount: amount},
		ApplyAddOn{Items: []string{"fries"}, Free: true, PriceLimit: &amount},
	}

	for _, a := range actions {
		def := Definition{Tag: TagDeal, Action: a}
		data, err := json.Marshal(def)
		require.NoError(t, err)

		var got Definition
		require.NoError(t, json.Unmarshal(data, &got), "action %T", a)
		require.IsType(t, a, got.Action)
	}
}

func TestOrderLevel(t *testing.T) {
	require.True(t, OrderLevel(ApplyFixedOrderDiscount{}))
	require.True(t, OrderLevel(ApplyOrderPercentDiscount{}))
	require.True(t, OrderLevel(ApplyOrderPointMultiplier{}))

	require.False(t, OrderLevel(AddFreeItem{}))
	require.False(t, OrderLevel(ApplyBlanketPrice{}))
	require.False(t, OrderLevel(ApplyAddOn{}))
	require.False(t, OrderLevel(AddToUserCredit{}))
}
