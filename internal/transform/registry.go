package transform

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (RunTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("miss_payment", createMissPayment)
	registry.Register("extra_payment", createExtraPayment)
	registry.Register("remove_member", createRemoveMember)
	registry.Register("add_member", createAddMember)
	registry.Register("set_horizon", createChangeHorizon)
	registry.Register("set_contribution", createSetContribution)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (RunTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms in alphabetical order.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "miss_payment:month=3,member=m2"
func (r *TransformRegistry) ParseTransformSpec(spec string) (RunTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// Factory functions for each transform

func createMissPayment(params map[string]string) (RunTransform, error) {
	month, err := requiredInt("miss_payment", params, "month")
	if err != nil {
		return nil, err
	}
	return &MissPayment{Month: month, MemberID: params["member"]}, nil
}

func createExtraPayment(params map[string]string) (RunTransform, error) {
	month, err := requiredInt("extra_payment", params, "month")
	if err != nil {
		return nil, err
	}
	amount, err := optionalDecimal(params, "amount")
	if err != nil {
		return nil, err
	}
	return &ExtraPayment{Month: month, MemberID: params["member"], Amount: amount}, nil
}

func createRemoveMember(params map[string]string) (RunTransform, error) {
	month, err := requiredInt("remove_member", params, "month")
	if err != nil {
		return nil, err
	}
	return &RemoveMember{Month: month, MemberID: params["member"]}, nil
}

func createAddMember(params map[string]string) (RunTransform, error) {
	month, err := requiredInt("add_member", params, "month")
	if err != nil {
		return nil, err
	}
	contribution, err := optionalDecimal(params, "contribution")
	if err != nil {
		return nil, err
	}
	return &AddMember{Month: month, MemberID: params["member"], Contribution: contribution}, nil
}

func createChangeHorizon(params map[string]string) (RunTransform, error) {
	months, err := requiredInt("set_horizon", params, "months")
	if err != nil {
		return nil, err
	}
	return &ChangeHorizon{Months: months}, nil
}

func createSetContribution(params map[string]string) (RunTransform, error) {
	if _, ok := params["amount"]; !ok {
		return nil, fmt.Errorf("set_contribution requires 'amount' parameter")
	}
	amount, err := optionalDecimal(params, "amount")
	if err != nil {
		return nil, err
	}
	return &SetContribution{Amount: amount}, nil
}

func requiredInt(transform string, params map[string]string, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func optionalDecimal(params map[string]string, key string) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}
