package policy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Policy definition tags.
const (
	TagDeal          = "deal"
	TagAddOn         = "add_on"
	TagLoyaltyReward = "loyalty_reward"
)

// --------------------------------------------------
// POLICY
// --------------------------------------------------

type Policy struct {
	PolicyID   string     `json:"policy_id"`
	Name       string     `json:"name"`
	Header     string     `json:"header,omitempty"`
	Locked     bool       `json:"locked"`
	Active     bool       `json:"active"`
	Definition Definition `json:"definition"`

	// Usage limits, both optional.
	TotalUsages      *int `json:"total_usages,omitempty"`
	DaysSinceLastUse *int `json:"days_since_last_use,omitempty"`

	BeginTime *time.Time `json:"begin_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Definition is a policy's conditions (AND-ed) plus its single action.
type Definition struct {
	Tag        string      `json:"tag"`
	Conditions []Condition `json:"conditions"`
	Action     Action      `json:"action"`
}

// --------------------------------------------------
// CONDITIONS (CLOSED SUM)
// --------------------------------------------------

// Condition is one eligibility requirement. The set of kinds is
// closed; evaluation switches exhaustively over them.
type Condition interface {
	conditionKind() string
}

type MinimumCartTotal struct {
	Amount decimal.Decimal `json:"amount"`
}

type MinimumQuantity struct {
	Items    []string `json:"items"`
	Quantity int      `json:"quantity"`
}

type ExactQuantity struct {
	Items    []string `json:"items"`
	Quantity int      `json:"quantity"`
}

type MinimumUserPoints struct {
	Amount int `json:"amount"`
}

// TimeRange restricts a policy to a daily window on certain weekdays,
// evaluated in the restaurant's local time zone. Times are "HH:MM".
type TimeRange struct {
	BeginTime   string   `json:"begin_time"`
	EndTime     string   `json:"end_time"`
	AllowedDays []string `json:"allowed_days"`
}

func (MinimumCartTotal) conditionKind() string  { return "minimum_cart_total" }
func (MinimumQuantity) conditionKind() string   { return "minimum_quantity" }
func (ExactQuantity) conditionKind() string     { return "exact_quantity" }
func (MinimumUserPoints) conditionKind() string { return "minimum_user_points" }
func (TimeRange) conditionKind() string         { return "time_range" }

// --------------------------------------------------
// ACTIONS (CLOSED SUM)
// --------------------------------------------------

// Action is what a policy does once its conditions hold. Exactly one
// action per policy.
type Action interface {
	actionKind() string
}

type AddFreeItem struct {
	Items    []string `json:"items"`
	Quantity int      `json:"quantity"`
}

type ApplyPercentDiscount struct {
	Items            []string        `json:"items"`
	Amount           decimal.Decimal `json:"amount"` // fraction, 0.5 == 50% off
	MaxEffectedItems int             `json:"max_effected_items"`
}

type ApplyFixedDiscount struct {
	Items            []string        `json:"items"`
	Amount           decimal.Decimal `json:"amount"`
	MaxEffectedItems int             `json:"max_effected_items"`
}

type ApplyPointMultiplier struct {
	Items            []string        `json:"items"`
	Amount           decimal.Decimal `json:"amount"`
	MaxEffectedItems int             `json:"max_effected_items"`
}

type ApplyOrderPointMultiplier struct {
	Amount decimal.Decimal `json:"amount"`
}

type ApplyFixedOrderDiscount struct {
	Amount decimal.Decimal `json:"amount"`
}

type ApplyOrderPercentDiscount struct {
	Amount decimal.Decimal `json:"amount"`
}

type ApplyBlanketPrice struct {
	Items  []string        `json:"items"`
	Amount decimal.Decimal `json:"amount"`
}

type AddToUserCredit struct {
	Amount decimal.Decimal `json:"amount"`
}

type ApplyAddOn struct {
	Items           []string         `json:"items"`
	Amount          *decimal.Decimal `json:"amount,omitempty"` // flat add-on price
	Free            bool             `json:"free,omitempty"`
	PercentDiscount *decimal.Decimal `json:"percent_discount,omitempty"`
	FixedDiscount   *decimal.Decimal `json:"fixed_discount,omitempty"`
	PriceLimit      *decimal.Decimal `json:"price_limit,omitempty"`
}

func (AddFreeItem) actionKind() string               { return "add_free_item" }
func (ApplyPercentDiscount) actionKind() string      { return "apply_percent_discount" }
func (ApplyFixedDiscount) actionKind() string        { return "apply_fixed_discount" }
func (ApplyPointMultiplier) actionKind() string      { return "apply_point_multiplier" }
func (ApplyOrderPointMultiplier) actionKind() string { return "apply_order_point_multiplier" }
func (ApplyFixedOrderDiscount) actionKind() string   { return "apply_fixed_order_discount" }
func (ApplyOrderPercentDiscount) actionKind() string { return "apply_order_percent_discount" }
func (ApplyBlanketPrice) actionKind() string         { return "apply_blanket_price" }
func (AddToUserCredit) actionKind() string           { return "add_to_user_credit" }
func (ApplyAddOn) actionKind() string                { return "apply_add_on" }

// OrderLevel reports whether the action modifies the whole order
// rather than individual cart items.
func OrderLevel(a Action) bool {
	switch a.(type) {
	case ApplyFixedOrderDiscount, ApplyOrderPercentDiscount, ApplyOrderPointMultiplier:
		return true
	}
	return false
}

// --------------------------------------------------
// JSON CODEC
// --------------------------------------------------

// Conditions and actions are stored as {"type": ..., ...fields}.

type typedEnvelope struct {
	Type string `json:"type"`
}

func (d Definition) MarshalJSON() ([]byte, error) {
	conds := make([]json.RawMessage, 0, len(d.Conditions))
	for _, c := range d.Conditions {
		raw, err := marshalTagged(c.conditionKind(), c)
		if err != nil {
			return nil, err
		}
		conds = append(conds, raw)
	}

	var action json.RawMessage
	if d.Action != nil {
		raw, err := marshalTagged(d.Action.actionKind(), d.Action)
		if err != nil {
			return nil, err
		}
		action = raw
	}

	return json.Marshal(struct {
		Tag        string            `json:"tag"`
		Conditions []json.RawMessage `json:"conditions"`
		Action     json.RawMessage   `json:"action,omitempty"`
	}{d.Tag, conds, action})
}

func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tag        string            `json:"tag"`
		Conditions []json.RawMessage `json:"conditions"`
		Action     json.RawMessage   `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Tag = raw.Tag
	d.Conditions = d.Conditions[:0]
	for _, c := range raw.Conditions {
		cond, err := unmarshalCondition(c)
		if err != nil {
			return err
		}
		d.Conditions = append(d.Conditions, cond)
	}

	if len(raw.Action) > 0 && string(raw.Action) != "null" {
		action, err := unmarshalAction(raw.Action)
		if err != nil {
			return err
		}
		d.Action = action
	}
	return nil
}

func marshalTagged(kind string, v any) (json.RawMessage, error) {
	fields, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(typedEnvelope{Type: kind})
	if string(fields) == "{}" {
		return tag, nil
	}
	// splice the type tag into the object
	out := append([]byte(`{"type":`), []byte(fmt.Sprintf("%q,", kind))...)
	out = append(out, fields[1:]...)
	return out, nil
}

func unmarshalCondition(data []byte) (Condition, error) {
	var env typedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var (
		cond Condition
		err  error
	)
	switch env.Type {
	case "minimum_cart_total":
		var c MinimumCartTotal
		err = json.Unmarshal(data, &c)
		cond = c
	case "minimum_quantity":
		var c MinimumQuantity
		err = json.Unmarshal(data, &c)
		cond = c
	case "exact_quantity":
		var c ExactQuantity
		err = json.Unmarshal(data, &c)
		cond = c
	case "minimum_user_points":
		var c MinimumUserPoints
		err = json.Unmarshal(data, &c)
		cond = c
	case "time_range":
		var c TimeRange
		err = json.Unmarshal(data, &c)
		cond = c
	default:
		return nil, fmt.Errorf("unknown condition type %q", env.Type)
	}
	return cond, err
}

func unmarshalAction(data []byte) (Action, error) {
	var env typedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var (
		action Action
		err    error
	)
	switch env.Type {
	case "add_free_item":
		var a AddFreeItem
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_percent_discount":
		var a ApplyPercentDiscount
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_fixed_discount":
		var a ApplyFixedDiscount
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_point_multiplier":
		var a ApplyPointMultiplier
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_order_point_multiplier":
		var a ApplyOrderPointMultiplier
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_fixed_order_discount":
		var a ApplyFixedOrderDiscount
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_order_percent_discount":
		var a ApplyOrderPercentDiscount
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_blanket_price":
		var a ApplyBlanketPrice
		err = json.Unmarshal(data, &a)
		action = a
	case "add_to_user_credit":
		var a AddToUserCredit
		err = json.Unmarshal(data, &a)
		action = a
	case "apply_add_on":
		var a ApplyAddOn
		err = json.Unmarshal(data, &a)
		action = a
	default:
		return nil, fmt.Errorf("unknown action type %q", env.Type)
	}
	return action, err
}
