package expr

import (
	"context"
	"fmt"

	"github.com/polisai/oxy/pkg/object"
)

// --- AST Nodes ---

type node interface {
	Eval(ctx context.Context, scope *Scope) (object.Object, error)
}

// target is a node that can appear on the left of an assignment or after del.
type target interface {
	node
	assign(ctx context.Context, scope *Scope, value object.Object) error
	augment(ctx context.Context, scope *Scope, op object.Operator, value object.Object) error
	remove(ctx context.Context, scope *Scope) error
}

type literalExpr struct {
	value object.Object
}

type nameExpr struct {
	name string
}

type attrExpr struct {
	obj  node
	name string
}

type indexExpr struct {
	obj node
	key node
}

type sliceExpr struct {
	start, stop, step node
}

type callExpr struct {
	fn     node
	args   []node
	kwargs []keywordArg
}

type keywordArg struct {
	name  string
	value node
}

type tupleExpr struct {
	items []node
}

type listExpr struct {
	items []node
}

type dictExpr struct {
	keys   []node
	values []node
}

type unaryExpr struct {
	op      object.UnaryOperator
	operand node
}

type notExpr struct {
	operand node
}

type binaryExpr struct {
	op    object.Operator
	left  node
	right node
}

type logicalExpr struct {
	and   bool
	left  node
	right node
}

type comparison int

const (
	compareRich comparison = iota
	compareIn
	compareNotIn
	compareIs
	compareIsNot
)

type compareStep struct {
	kind  comparison
	op    object.CompareOp
	right node
}

// compareExpr is a chain a < b <= c, evaluated pairwise with each operand
// evaluated at most once.
type compareExpr struct {
	left  node
	steps []compareStep
}

// --- Statements ---

type statement interface {
	exec(ctx context.Context, scope *Scope) (object.Object, error)
}

type exprStmt struct {
	expr node
}

type assignStmt struct {
	target target
	value  node
}

type augAssignStmt struct {
	target target
	op     object.Operator
	value  node
}

type delStmt struct {
	target target
}

func (s *exprStmt) exec(ctx context.Context, scope *Scope) (object.Object, error) {
	return s.expr.Eval(ctx, scope)
}

func (s *assignStmt) exec(ctx context.Context, scope *Scope) (object.Object, error) {
	value, err := s.value.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	return nil, s.target.assign(ctx, scope, value)
}

func (s *augAssignStmt) exec(ctx context.Context, scope *Scope) (object.Object, error) {
	value, err := s.value.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	return nil, s.target.augment(ctx, scope, s.op, value)
}

func (s *delStmt) exec(ctx context.Context, scope *Scope) (object.Object, error) {
	return nil, s.target.remove(ctx, scope)
}

// --- Evaluation ---

func (n *literalExpr) Eval(ctx context.Context, _ *Scope) (object.Object, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return n.value, nil
}

func (n *nameExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if value, ok := scope.Lookup(n.name); ok {
		return value, nil
	}
	return nil, fmt.Errorf("%w: name '%s' is not defined", ErrUnknownIdentifier, n.name)
}

func (n *nameExpr) assign(_ context.Context, scope *Scope, value object.Object) error {
	scope.Set(n.name, value)
	return nil
}

func (n *nameExpr) augment(ctx context.Context, scope *Scope, op object.Operator, value object.Object) error {
	current, err := n.Eval(ctx, scope)
	if err != nil {
		return err
	}
	result, err := object.InPlace(op, current, value)
	if err != nil {
		return err
	}
	scope.Set(n.name, result)
	return nil
}

func (n *nameExpr) remove(_ context.Context, scope *Scope) error {
	if !scope.Delete(n.name) {
		return fmt.Errorf("%w: name '%s' is not defined", ErrUnknownIdentifier, n.name)
	}
	return nil
}

func (n *attrExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	obj, err := n.obj.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	return object.GetAttr(obj, n.name)
}

func (n *attrExpr) assign(ctx context.Context, scope *Scope, value object.Object) error {
	obj, err := n.obj.Eval(ctx, scope)
	if err != nil {
		return err
	}
	return object.SetAttr(obj, n.name, value)
}

func (n *attrExpr) augment(ctx context.Context, scope *Scope, op object.Operator, value object.Object) error {
	obj, err := n.obj.Eval(ctx, scope)
	if err != nil {
		return err
	}
	current, err := object.GetAttr(obj, n.name)
	if err != nil {
		return err
	}
	result, err := object.InPlace(op, current, value)
	if err != nil {
		return err
	}
	return object.SetAttr(obj, n.name, result)
}

func (n *attrExpr) remove(ctx context.Context, scope *Scope) error {
	obj, err := n.obj.Eval(ctx, scope)
	if err != nil {
		return err
	}
	return object.DelAttr(obj, n.name)
}

func (n *indexExpr) operands(ctx context.Context, scope *Scope) (object.Object, object.Object, error) {
	obj, err := n.obj.Eval(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	key, err := n.key.Eval(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	return obj, key, nil
}

func (n *indexExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	obj, key, err := n.operands(ctx, scope)
	if err != nil {
		return nil, err
	}
	return object.GetItem(obj, key)
}

func (n *indexExpr) assign(ctx context.Context, scope *Scope, value object.Object) error {
	obj, key, err := n.operands(ctx, scope)
	if err != nil {
		return err
	}
	return object.SetItem(obj, key, value)
}

func (n *indexExpr) augment(ctx context.Context, scope *Scope, op object.Operator, value object.Object) error {
	obj, key, err := n.operands(ctx, scope)
	if err != nil {
		return err
	}
	current, err := object.GetItem(obj, key)
	if err != nil {
		return err
	}
	result, err := object.InPlace(op, current, value)
	if err != nil {
		return err
	}
	return object.SetItem(obj, key, result)
}

func (n *indexExpr) remove(ctx context.Context, scope *Scope) error {
	obj, key, err := n.operands(ctx, scope)
	if err != nil {
		return err
	}
	return object.DelItem(obj, key)
}

func (n *sliceExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	bounds := [3]object.Object{}
	for i, part := range []node{n.start, n.stop, n.step} {
		if part == nil {
			continue
		}
		v, err := part.Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		bounds[i] = v
	}
	return object.NewSlice(bounds[0], bounds[1], bounds[2]), nil
}

func (n *callExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	fn, err := n.fn.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	args, err := evalAll(ctx, scope, n.args)
	if err != nil {
		return nil, err
	}
	var kwargs map[string]object.Object
	if len(n.kwargs) > 0 {
		kwargs = make(map[string]object.Object, len(n.kwargs))
		for _, kw := range n.kwargs {
			if _, dup := kwargs[kw.name]; dup {
				return nil, fmt.Errorf("%w: keyword argument repeated: %s", ErrSyntax, kw.name)
			}
			v, err := kw.value.Eval(ctx, scope)
			if err != nil {
				return nil, err
			}
			kwargs[kw.name] = v
		}
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return object.Call(fn, args, kwargs)
}

func (n *tupleExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	items, err := evalAll(ctx, scope, n.items)
	if err != nil {
		return nil, err
	}
	return object.NewTuple(items...), nil
}

func (n *listExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	items, err := evalAll(ctx, scope, n.items)
	if err != nil {
		return nil, err
	}
	return object.NewList(items...), nil
}

func (n *dictExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	d := object.NewDict()
	for i := range n.keys {
		k, err := n.keys[i].Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		v, err := n.values[i].Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		if err := d.Set(k, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (n *unaryExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	value, err := n.operand.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	return object.Unary(n.op, value)
}

func (n *notExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	value, err := n.operand.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	truth, err := object.Truth(value)
	if err != nil {
		return nil, err
	}
	return object.Bool(!truth), nil
}

func (n *binaryExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	left, err := n.left.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	right, err := n.right.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	return object.Binary(n.op, left, right)
}

// Eval short-circuits and yields the deciding operand itself.
func (n *logicalExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	left, err := n.left.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	truth, err := object.Truth(left)
	if err != nil {
		return nil, err
	}
	if truth != n.and {
		return left, nil
	}
	return n.right.Eval(ctx, scope)
}

func (n *compareExpr) Eval(ctx context.Context, scope *Scope) (object.Object, error) {
	left, err := n.left.Eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	var result object.Object = object.True
	for _, step := range n.steps {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		right, err := step.right.Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		result, err = step.apply(left, right)
		if err != nil {
			return nil, err
		}
		truth, err := object.Truth(result)
		if err != nil {
			return nil, err
		}
		if !truth {
			return result, nil
		}
		left = right
	}
	return result, nil
}

func (s compareStep) apply(left, right object.Object) (object.Object, error) {
	switch s.kind {
	case compareIn, compareNotIn:
		in, err := object.Contains(right, left)
		if err != nil {
			return nil, err
		}
		return object.Bool(in == (s.kind == compareIn)), nil
	case compareIs:
		return object.Bool(object.Is(left, right)), nil
	case compareIsNot:
		return object.Bool(!object.Is(left, right)), nil
	}
	return object.RichCompare(left, right, s.op)
}

// --- Helpers ---

func evalAll(ctx context.Context, scope *Scope, nodes []node) ([]object.Object, error) {
	out := make([]object.Object, len(nodes))
	for i, n := range nodes {
		v, err := n.Eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	default:
		return nil
	}
}
