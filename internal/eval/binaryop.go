package eval

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// evalBinaryOp dispatches the four BinaryOp families named in §4.1:
// boolean (short-circuit And/Or, eager Xor), the value.Compute families
// (math/comparison/containment/regex/string-edge/bits), and assignment.
func evalBinaryOp(st *engine.State, stk *engine.Stack, e *ast.BinaryOpExpr) (value.Value, error) {
	switch {
	case e.Bool != nil:
		return evalBoolOp(st, stk, *e.Bool, e)
	case e.Assign != nil:
		return evalAssign(st, stk, *e.Assign, e)
	case e.ValueOp != nil:
		lhs, err := EvalExpression(st, stk, e.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := EvalExpression(st, stk, e.Rhs)
		if err != nil {
			return nil, err
		}
		out, err := value.Compute(*e.ValueOp, lhs, rhs, st.Regexes, e.Span())
		if err != nil {
			return nil, evalerr.Wrap(evalerr.TypeMismatch, e.Span(), err)
		}
		return out, nil
	default:
		return nil, evalerr.Newf(evalerr.UnknownOperator, e.Span(), "binary operation has no operator selected")
	}
}

// evalBoolOp implements short-circuit And/Or and eager Xor (§8 property 3).
func evalBoolOp(st *engine.State, stk *engine.Stack, op ast.BoolOp, e *ast.BinaryOpExpr) (value.Value, error) {
	lhs, err := EvalExpression(st, stk, e.Lhs)
	if err != nil {
		return nil, err
	}
	lb, ok := lhs.(value.Bool)
	if !ok {
		return nil, evalerr.TypeMismatchf(e.Span(), "type mismatch: expected bool, got %s", lhs.Kind())
	}

	switch op {
	case ast.BoolAnd:
		if !lb.Val {
			return value.NewBool(false, e.Span()), nil
		}
		rhs, err := EvalExpression(st, stk, e.Rhs)
		if err != nil {
			return nil, err
		}
		rb, ok := rhs.(value.Bool)
		if !ok {
			return nil, evalerr.TypeMismatchf(e.Span(), "type mismatch: expected bool, got %s", rhs.Kind())
		}
		return value.NewBool(rb.Val, e.Span()), nil

	case ast.BoolOr:
		if lb.Val {
			return value.NewBool(true, e.Span()), nil
		}
		rhs, err := EvalExpression(st, stk, e.Rhs)
		if err != nil {
			return nil, err
		}
		rb, ok := rhs.(value.Bool)
		if !ok {
			return nil, evalerr.TypeMismatchf(e.Span(), "type mismatch: expected bool, got %s", rhs.Kind())
		}
		return value.NewBool(rb.Val, e.Span()), nil

	default: // BoolXor evaluates both sides unconditionally.
		rhs, err := EvalExpression(st, stk, e.Rhs)
		if err != nil {
			return nil, err
		}
		out, err := value.Xor(lb, rhs, e.Span())
		if err != nil {
			return nil, evalerr.Wrap(evalerr.TypeMismatch, e.Span(), err)
		}
		return out, nil
	}
}

// evalAssign implements §4.1's assignment rules, including compound
// operators and cell-path upsert for both plain variables and the
// reserved env variable.
func evalAssign(st *engine.State, stk *engine.Stack, op ast.AssignOp, e *ast.BinaryOpExpr) (value.Value, error) {
	rhs, err := EvalExpression(st, stk, e.Rhs)
	if err != nil {
		return nil, err
	}

	if op.Compound {
		cur, err := EvalExpression(st, stk, e.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err = value.Compute(op.Math, cur, rhs, st.Regexes, e.Span())
		if err != nil {
			return nil, evalerr.Wrap(evalerr.TypeMismatch, e.Span(), err)
		}
	}

	switch lhs := e.Lhs.(type) {
	case *ast.Var:
		return assignToVar(st, stk, lhs.ID, rhs, e.Span())
	case *ast.VarDecl:
		// A VarDecl on the lhs is the `let`/`mut` declaration site itself,
		// not a later reassignment: it always binds, whether or not the
		// declared variable ends up mutable.
		stk.SetVar(lhs.ID, rhs)
		return value.NewNothing(e.Span()), nil
	case *ast.FullCellPath:
		return assignToCellPath(st, stk, lhs, rhs, e.Span())
	default:
		return nil, evalerr.RequiresVar(e.Span())
	}
}

func assignToVar(st *engine.State, stk *engine.Stack, id value.VarID, rhs value.Value, sp value.Span) (value.Value, error) {
	info, ok := st.Vars.Get(id)
	if !ok || !info.Mutable {
		return nil, evalerr.RequiresMutableVar(sp)
	}
	stk.SetVar(id, rhs)
	return value.NewNothing(sp), nil
}

// assignToCellPath handles `$var.path = rhs`, where var is either a
// mutable variable or the reserved env id.
func assignToCellPath(st *engine.State, stk *engine.Stack, lhs *ast.FullCellPath, rhs value.Value, sp value.Span) (value.Value, error) {
	headVar, ok := lhs.Head.(*ast.Var)
	if !ok {
		return nil, evalerr.RequiresVar(sp)
	}

	if headVar.ID == engine.EnvVariableID {
		return assignEnvCellPath(stk, lhs.Tail, rhs, sp)
	}

	info, ok := st.Vars.Get(headVar.ID)
	if !ok || !info.Mutable {
		return nil, evalerr.RequiresMutableVar(sp)
	}

	cur, ok := stk.GetVar(headVar.ID)
	if !ok {
		cur = value.NewNothing(sp)
	}
	updated, err := value.Upsert(cur, lhs.Tail, rhs)
	if err != nil {
		return nil, evalerr.Wrap(evalerr.CantConvert, sp, err)
	}
	stk.SetVar(headVar.ID, updated)
	return value.NewNothing(sp), nil
}

func assignEnvCellPath(stk *engine.Stack, tail []value.PathMember, rhs value.Value, sp value.Span) (value.Value, error) {
	current := stk.MergedEnvRecord(sp)
	updated, err := value.Upsert(current, tail, rhs)
	if err != nil {
		return nil, evalerr.Wrap(evalerr.CantConvert, sp, err)
	}
	updatedRec, ok := updated.(value.Record)
	if !ok || len(tail) == 0 {
		return nil, evalerr.RequiresVar(sp)
	}
	_ = updatedRec

	// Re-read the first tail segment (stringified) and publish it as an
	// env variable in the top env layer, per §4.1.
	first := tail[0]
	name := first.Name
	if !first.IsName {
		name = value.NewInt(int64(first.Index), sp).Display()
	}
	val, err := value.Follow(updated, tail[:1])
	if err != nil {
		return nil, evalerr.Wrap(evalerr.CantConvert, sp, err)
	}
	stk.SetEnv(name, val)
	return value.NewNothing(sp), nil
}
