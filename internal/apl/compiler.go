package apl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CompiledRotation is the runtime representation of an APL file.
type CompiledRotation struct {
	Name        string
	Description string
	Variables   map[string]any
	Actions     []*Action
}

// ActionType enumerates supported rotation entries.
type ActionType int

const (
	ActionUse ActionType = iota
	ActionWait
	ActionGroup
)

// Action is a compiled, ready-to-evaluate rotation entry.
type Action struct {
	Type      ActionType
	Ability   string
	Duration  time.Duration
	Steps     []*Action
	Condition Condition
	Tags      []string
}

type compiler struct {
	vars map[string]any
	v    validator
}

// Compile turns a parsed File into a CompiledRotation. Names are checked
// against catalog; a nil catalog accepts any name.
func Compile(file *File, catalog Catalog) (*CompiledRotation, error) {
	if file == nil {
		return nil, fmt.Errorf("nil rotation file")
	}
	c := compiler{vars: file.Variables, v: validator{catalog: catalog}}
	var actions []*Action
	for idx := range file.Rotation {
		action, err := c.action(&file.Rotation[idx])
		if err != nil {
			return nil, fmt.Errorf("rotation entry %d: %w", idx, err)
		}
		actions = append(actions, action)
	}
	return &CompiledRotation{
		Name:        file.Name,
		Description: file.Description,
		Variables:   file.Variables,
		Actions:     actions,
	}, nil
}

func (c compiler) action(def *ActionDefinition) (*Action, error) {
	if def == nil {
		return nil, fmt.Errorf("nil action")
	}
	action := &Action{
		Tags: def.Tags,
	}
	var err error
	action.Condition, err = c.condition(def.When)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(def.Action) {
	case "use", "use_ability":
		if def.Ability == "" {
			return nil, fmt.Errorf("use action requires 'ability'")
		}
		if action.Ability, err = c.v.action(def.Ability); err != nil {
			return nil, err
		}
		action.Type = ActionUse
	case "wait":
		if def.DurationSeconds <= 0 {
			return nil, fmt.Errorf("wait action requires duration_seconds > 0")
		}
		action.Type = ActionWait
		action.Duration = seconds(def.DurationSeconds)
	case "group", "macro":
		action.Type = ActionGroup
		for stepIdx := range def.Steps {
			step, err := c.action(&def.Steps[stepIdx])
			if err != nil {
				return nil, fmt.Errorf("group step %d: %w", stepIdx, err)
			}
			action.Steps = append(action.Steps, step)
		}
	default:
		return nil, fmt.Errorf("unsupported action '%s'", def.Action)
	}

	return action, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (c compiler) condition(node *ConditionNode) (Condition, error) {
	if node == nil || node.Node() == nil {
		return trueCondition{}, nil
	}
	return c.node(node.Node())
}

func (c compiler) node(node *yaml.Node) (Condition, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return c.mapping(node)
	case yaml.SequenceNode:
		// Treat bare sequences as implicit "all"
		children, err := c.sequence(node)
		if err != nil {
			return nil, err
		}
		return allCondition{children: children}, nil
	case yaml.ScalarNode:
		var boolVal bool
		if err := node.Decode(&boolVal); err == nil {
			if boolVal {
				return trueCondition{}, nil
			}
			return falseCondition{}, nil
		}
		return nil, fmt.Errorf("unsupported scalar condition: %s", node.Value)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
	}
}

func (c compiler) mapping(node *yaml.Node) (Condition, error) {
	if len(node.Content)%2 != 0 || len(node.Content) == 0 {
		return nil, fmt.Errorf("condition mapping must have key/value pairs")
	}
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("condition mapping must have exactly one entry")
	}

	key := node.Content[0].Value
	val := node.Content[1]

	switch key {
	case "all":
		children, err := c.sequence(val)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		return allCondition{children: children}, nil
	case "any":
		children, err := c.sequence(val)
		if err != nil {
			return nil, fmt.Errorf("any: %w", err)
		}
		return anyCondition{children: children}, nil
	case "not":
		child, err := c.node(val)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return notCondition{child: child}, nil
	case "true":
		return trueCondition{}, nil
	case "false":
		return falseCondition{}, nil
	case "in_execute":
		var want bool
		if err := val.Decode(&want); err != nil {
			return nil, fmt.Errorf("in_execute: %w", err)
		}
		return inExecuteCondition{want: want}, nil
	}

	params, err := nodeToMap(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	switch key {
	case "buff_active":
		name, err := c.name(params, "buff", c.v.buff)
		if err != nil {
			return nil, err
		}
		cond := buffActiveCondition{name: name}
		cond.remaining, err = c.remainingBounds(params)
		return cond, err
	case "debuff_active":
		name, err := c.name(params, "debuff", c.v.debuff)
		if err != nil {
			return nil, err
		}
		cond := debuffActiveCondition{name: name}
		cond.remaining, err = c.remainingBounds(params)
		return cond, err
	case "debuff_remaining", "dot_remaining":
		name, err := c.name(params, "debuff", c.v.debuff)
		if err != nil {
			return nil, err
		}
		cond := debuffRemainingCondition{name: name}
		cond.remaining, err = c.secondsBounds(params)
		return cond, err
	case "resource_percent":
		res, err := c.name(params, "resource", c.v.resource)
		if err != nil {
			return nil, err
		}
		cond := resourcePercentCondition{resource: res}
		cond.percent, err = floatBounds(params, c.vars)
		return cond, err
	case "cooldown_ready":
		name, err := c.name(params, "ability", c.v.cooldown)
		if err != nil {
			return nil, err
		}
		return cooldownReadyCondition{name: name}, nil
	case "cooldown_remaining":
		name, err := c.name(params, "ability", c.v.cooldown)
		if err != nil {
			return nil, err
		}
		cond := cooldownRemainingCondition{name: name}
		cond.remaining, err = c.secondsBounds(params)
		return cond, err
	case "stacks", "charges":
		buff, err := c.name(params, "buff", c.v.buff)
		if err != nil {
			return nil, err
		}
		cond := stacksCondition{buff: buff}
		cond.stacks, err = intBounds(params, c.vars)
		return cond, err
	case "combat_remaining":
		cond := combatRemainingCondition{}
		cond.remaining, err = c.secondsBounds(params)
		return cond, err
	default:
		return nil, fmt.Errorf("unknown condition '%s'", key)
	}
}

func (c compiler) name(params map[string]*yaml.Node, field string, check func(string) (string, error)) (string, error) {
	raw, err := stringField(params, field, true, c.vars)
	if err != nil {
		return "", err
	}
	return check(raw)
}

func (c compiler) remainingBounds(params map[string]*yaml.Node) (bounds[time.Duration], error) {
	var b bounds[time.Duration]
	var err error
	if b.gte, err = durationField(params, "min_remaining", c.vars); err != nil {
		return b, err
	}
	if b.lte, err = durationField(params, "max_remaining", c.vars); err != nil {
		return b, err
	}
	return b, nil
}

func (c compiler) secondsBounds(params map[string]*yaml.Node) (bounds[time.Duration], error) {
	var b bounds[time.Duration]
	var err error
	if b.lt, err = durationField(params, "lt_seconds", c.vars); err != nil {
		return b, err
	}
	if b.lte, err = durationField(params, "lte_seconds", c.vars); err != nil {
		return b, err
	}
	if b.gt, err = durationField(params, "gt_seconds", c.vars); err != nil {
		return b, err
	}
	if b.gte, err = durationField(params, "gte_seconds", c.vars); err != nil {
		return b, err
	}
	return b, nil
}

func floatBounds(params map[string]*yaml.Node, vars map[string]any) (bounds[float64], error) {
	var b bounds[float64]
	var err error
	if b.lt, err = floatField(params, "lt", vars); err != nil {
		return b, err
	}
	if b.lte, err = floatField(params, "lte", vars); err != nil {
		return b, err
	}
	if b.gt, err = floatField(params, "gt", vars); err != nil {
		return b, err
	}
	if b.gte, err = floatField(params, "gte", vars); err != nil {
		return b, err
	}
	return b, nil
}

func intBounds(params map[string]*yaml.Node, vars map[string]any) (bounds[int], error) {
	var b bounds[int]
	var err error
	if b.lt, err = intField(params, "lt", vars); err != nil {
		return b, err
	}
	if b.lte, err = intField(params, "lte", vars); err != nil {
		return b, err
	}
	if b.gt, err = intField(params, "gt", vars); err != nil {
		return b, err
	}
	if b.gte, err = intField(params, "gte", vars); err != nil {
		return b, err
	}
	return b, nil
}

func (c compiler) sequence(node *yaml.Node) ([]Condition, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected sequence, got %d", node.Kind)
	}
	children := make([]Condition, 0, len(node.Content))
	for idx, childNode := range node.Content {
		child, err := c.node(childNode)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", idx, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func nodeToMap(node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping node, got %d", node.Kind)
	}
	result := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		result[key] = node.Content[i+1]
	}
	return result, nil
}

func stringField(fields map[string]*yaml.Node, key string, required bool, vars map[string]any) (string, error) {
	node, ok := fields[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing field '%s'", key)
		}
		return "", nil
	}
	val, err := resolveScalar(node, vars)
	if err != nil {
		return "", err
	}
	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func durationField(fields map[string]*yaml.Node, key string, vars map[string]any) (*time.Duration, error) {
	val, err := floatField(fields, key, vars)
	if err != nil || val == nil {
		return nil, err
	}
	d := time.Duration(*val * float64(time.Second))
	return &d, nil
}

func floatField(fields map[string]*yaml.Node, key string, vars map[string]any) (*float64, error) {
	node, ok := fields[key]
	if !ok {
		return nil, nil
	}
	val, err := resolveScalar(node, vars)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case int64:
		f := float64(v)
		return &f, nil
	case uint64:
		f := float64(v)
		return &f, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float for key '%s'", v, key)
	}
}

func intField(fields map[string]*yaml.Node, key string, vars map[string]any) (*int, error) {
	node, ok := fields[key]
	if !ok {
		return nil, nil
	}
	val, err := resolveScalar(node, vars)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case int:
		return &v, nil
	case int64:
		c := int(v)
		return &c, nil
	case uint64:
		c := int(v)
		return &c, nil
	case float64:
		c := int(v)
		return &c, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int for key '%s'", v, key)
	}
}

func resolveScalar(node *yaml.Node, vars map[string]any) (interface{}, error) {
	if node == nil {
		return nil, fmt.Errorf("nil scalar")
	}
	var out interface{}
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	if str, ok := out.(string); ok {
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "${") && strings.HasSuffix(str, "}") {
			name := strings.TrimSpace(str[2 : len(str)-1])
			if vars == nil {
				return nil, fmt.Errorf("variable '%s' not defined", name)
			}
			val, ok := vars[name]
			if !ok {
				return nil, fmt.Errorf("variable '%s' not defined", name)
			}
			return val, nil
		}
	}
	return out, nil
}
