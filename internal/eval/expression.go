// Package eval is the tree-walking evaluator: expression evaluation,
// pipeline composition, call dispatch, assignment, closure capture,
// recursion limiting and cooperative cancellation, all driven off an
// engine.State snapshot and a per-turn engine.Stack.
package eval

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/hostenv"
	"github.com/cwbudde/quill/internal/unit"
	"github.com/cwbudde/quill/internal/value"
)

// EvalExpression is the pure recursive AST→Value evaluator of §4.1. Every
// branch observes the cancellation flag first and aborts with Nothing at
// the expression's head span when it is set.
func EvalExpression(st *engine.State, stk *engine.Stack, expr ast.Expr) (value.Value, error) {
	if st.Cancelled() {
		return value.NewNothing(expr.Span()), nil
	}

	switch e := expr.(type) {
	case *ast.BoolLit:
		return value.NewBool(e.Val, e.Span()), nil
	case *ast.IntLit:
		return value.NewInt(e.Val, e.Span()), nil
	case *ast.FloatLit:
		return value.NewFloat(e.Val, e.Span()), nil
	case *ast.StringLit:
		return value.NewString(e.Val, e.Span()), nil
	case *ast.BinaryLit:
		return value.NewBinary(e.Val, e.Span()), nil
	case *ast.DateLit:
		return value.NewDate(e.UnixNanos, e.Span()), nil
	case *ast.FilepathLit:
		return value.NewString(hostenv.ExpandPathWith(e.Val, stk.Cwd), e.Span()), nil
	case *ast.DirectoryLit:
		return value.NewString(hostenv.ExpandPathWith(e.Val, stk.Cwd), e.Span()), nil
	case *ast.GlobLit:
		return value.NewString(hostenv.ExpandPathWith(e.Val, stk.Cwd), e.Span()), nil
	case *ast.NothingLit:
		return value.NewNothing(e.Span()), nil
	case *ast.GarbageLit:
		return value.NewNothing(e.Span()), nil
	case *ast.VarDecl:
		return value.NewNothing(e.Span()), nil
	case *ast.ImportPatternExpr:
		return value.NewNothing(e.Span()), nil
	case *ast.SignatureExpr:
		return value.NewNothing(e.Span()), nil
	case *ast.OperatorExpr:
		return value.NewNothing(e.Span()), nil

	case *ast.ValueWithUnitExpr:
		return evalValueWithUnit(st, stk, e)
	case *ast.RangeExpr:
		return evalRange(st, stk, e)
	case *ast.Var:
		return EvalVariable(st, stk, e.ID, e.Span())
	case *ast.FullCellPath:
		return evalFullCellPath(st, stk, e)
	case *ast.CallExpr:
		pd, err := EvalCall(st, stk, e.Call, engine.Empty(), false, false)
		if err != nil {
			return nil, err
		}
		return pd.IntoValue(e.Span()), nil
	case *ast.ExternalCallExpr:
		pd, err := EvalExternal(st, stk, e, engine.Empty(), false, false)
		if err != nil {
			return nil, err
		}
		return pd.IntoValue(e.Span()), nil
	case *ast.SubexpressionExpr:
		pd, err := EvalSubexpression(st, stk, e.Block, engine.Empty())
		if err != nil {
			return nil, err
		}
		return pd.IntoValue(e.Span()), nil
	case *ast.ClosureExpr:
		return evalClosureCapture(st, stk, e.Block, e.Span())
	case *ast.RowConditionExpr:
		return evalClosureCapture(st, stk, e.Block, e.Span())
	case *ast.BlockExpr:
		return value.NewBlock(e.Block, e.Span()), nil
	case *ast.UnaryNotExpr:
		inner, err := EvalExpression(st, stk, e.Inner)
		if err != nil {
			return nil, err
		}
		out, err := value.Not(inner, e.Span())
		if err != nil {
			return nil, evalerr.Wrap(evalerr.TypeMismatch, e.Span(), err)
		}
		return out, nil
	case *ast.BinaryOpExpr:
		return evalBinaryOp(st, stk, e)
	case *ast.ListExpr:
		return evalList(st, stk, e)
	case *ast.RecordExpr:
		return evalRecord(st, stk, e)
	case *ast.TableExpr:
		return evalTable(st, stk, e)
	case *ast.StringInterpolationExpr:
		return evalStringInterpolation(st, stk, e)
	case *ast.OverlayExpr:
		contents := ""
		if st.Spans != nil {
			contents = string(st.Spans.Contents(e.Span()))
		}
		if contents == "" {
			contents = e.Name
		}
		return value.NewString(contents, e.Span()), nil
	case *ast.CellPathExpr:
		return value.NewCellPath(e.Members, e.Span()), nil
	case *ast.KeywordExpr:
		return evalKeyword(st, stk, e)

	default:
		return nil, evalerr.Newf(evalerr.TypeMismatch, expr.Span(), "unhandled expression node %T", expr)
	}
}

func evalValueWithUnit(st *engine.State, stk *engine.Stack, e *ast.ValueWithUnitExpr) (value.Value, error) {
	inner, err := EvalExpression(st, stk, e.Inner)
	if err != nil {
		return nil, err
	}
	i, ok := inner.(value.Int)
	if !ok {
		return nil, evalerr.TypeMismatchf(e.Span(), "type mismatch: expected int for unit value, got %s", inner.Kind())
	}
	u, ok := unitFromName(e.Unit)
	if !ok {
		return nil, evalerr.TypeMismatchf(e.Span(), "unrecognized unit %q", e.Unit)
	}
	out, err := unit.Compute(i.Val, u, e.Span())
	if err != nil {
		if _, isOverflow := err.(*unit.OverflowError); isOverflow {
			return nil, evalerr.Generic(e.Span(), "duration too large", err.Error(), "")
		}
		return nil, evalerr.Wrap(evalerr.GenericError, e.Span(), err)
	}
	return out, nil
}

func unitFromName(name string) (unit.Unit, bool) {
	table := map[string]unit.Unit{
		"B": unit.Byte, "kB": unit.Kilobyte, "kb": unit.Kilobyte, "MB": unit.Megabyte, "mb": unit.Megabyte,
		"GB": unit.Gigabyte, "gb": unit.Gigabyte, "TB": unit.Terabyte, "tb": unit.Terabyte,
		"PB": unit.Petabyte, "EB": unit.Exabyte, "ZB": unit.Zettabyte,
		"KiB": unit.Kibibyte, "kib": unit.Kibibyte, "MiB": unit.Mebibyte, "mib": unit.Mebibyte,
		"GiB": unit.Gibibyte, "gib": unit.Gibibyte, "TiB": unit.Tebibyte, "tib": unit.Tebibyte,
		"PiB": unit.Pebibyte, "EiB": unit.Exbibyte, "ZiB": unit.Zebibyte,
		"ns": unit.Nanosecond, "us": unit.Microsecond, "µs": unit.Microsecond, "ms": unit.Millisecond,
		"sec": unit.Second, "s": unit.Second, "min": unit.Minute, "hr": unit.Hour, "day": unit.Day, "wk": unit.Week,
	}
	u, ok := table[name]
	return u, ok
}

func evalRange(st *engine.State, stk *engine.Stack, e *ast.RangeExpr) (value.Value, error) {
	var from, step, to value.Value
	var err error
	if e.From != nil {
		if from, err = EvalExpression(st, stk, e.From); err != nil {
			return nil, err
		}
	}
	if e.Next != nil {
		if step, err = EvalExpression(st, stk, e.Next); err != nil {
			return nil, err
		}
	}
	if e.To != nil {
		if to, err = EvalExpression(st, stk, e.To); err != nil {
			return nil, err
		}
	}
	return value.NewRange(from, step, to, e.Op, e.Span()), nil
}

func evalFullCellPath(st *engine.State, stk *engine.Stack, e *ast.FullCellPath) (value.Value, error) {
	head, err := EvalExpression(st, stk, e.Head)
	if err != nil {
		return nil, err
	}
	out, err := value.Follow(head, e.Tail)
	if err != nil {
		return nil, evalerr.Wrap(evalerr.CantConvert, e.Span(), err)
	}
	return out.WithSpan(e.Span()), nil
}

// evalClosureCapture builds a Closure value for a Closure/RowCondition
// expression, cloning exactly the block's declared captures from the
// current stack at creation time.
func evalClosureCapture(st *engine.State, stk *engine.Stack, blockID value.BlockID, sp value.Span) (value.Value, error) {
	b, ok := st.Blocks.Get(blockID)
	if !ok {
		return nil, evalerr.Newf(evalerr.GenericError, sp, "unknown block %d", blockID)
	}
	captured := stk.CaptureSnapshot(b.Captures)
	return value.NewClosure(blockID, captured, sp), nil
}

func evalList(st *engine.State, stk *engine.Stack, e *ast.ListExpr) (value.Value, error) {
	items := make([]value.Value, len(e.Items))
	for i, it := range e.Items {
		v, err := EvalExpression(st, stk, it)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return value.NewList(items, e.Span()), nil
}

// evalRecord evaluates a record literal. Column names de-duplicate, last
// write wins, and the first insertion position is preserved (§4.1, §8
// property 4).
func evalRecord(st *engine.State, stk *engine.Stack, e *ast.RecordExpr) (value.Value, error) {
	rec := value.NewRecord(nil, nil, e.Span())
	for _, pair := range e.Pairs {
		keyVal, err := EvalExpression(st, stk, pair.Key)
		if err != nil {
			return nil, err
		}
		name, ok := keyVal.(value.String)
		if !ok {
			name = value.NewString(keyVal.Display(), keyVal.Span())
		}
		val, err := EvalExpression(st, stk, pair.Val)
		if err != nil {
			return nil, err
		}
		rec = rec.Upsert(name.Val, val)
	}
	return rec, nil
}

// evalTable broadcasts the evaluated header array into each row record.
func evalTable(st *engine.State, stk *engine.Stack, e *ast.TableExpr) (value.Value, error) {
	headers := make([]string, len(e.Headers))
	for i, h := range e.Headers {
		v, err := EvalExpression(st, stk, h)
		if err != nil {
			return nil, err
		}
		if s, ok := v.(value.String); ok {
			headers[i] = s.Val
		} else {
			headers[i] = v.Display()
		}
	}
	rows := make([]value.Value, len(e.Rows))
	for ri, row := range e.Rows {
		vals := make([]value.Value, len(row))
		for ci, cellExpr := range row {
			v, err := EvalExpression(st, stk, cellExpr)
			if err != nil {
				return nil, err
			}
			vals[ci] = v
		}
		rows[ri] = value.NewRecord(append([]string(nil), headers...), vals, e.Span())
	}
	return value.NewList(rows, e.Span()), nil
}

// evalStringInterpolation concatenates each part's Display() — the same
// display-for-pipeline convention as piping into `to string`.
func evalStringInterpolation(st *engine.State, stk *engine.Stack, e *ast.StringInterpolationExpr) (value.Value, error) {
	out := ""
	for _, part := range e.Parts {
		v, err := EvalExpression(st, stk, part)
		if err != nil {
			return nil, err
		}
		out += v.Display()
	}
	return value.NewString(out, e.Span()), nil
}

func evalKeyword(st *engine.State, stk *engine.Stack, e *ast.KeywordExpr) (value.Value, error) {
	if e.Kind == ast.KeywordReturn {
		var v value.Value = value.NewNothing(e.Span())
		if e.Inner != nil {
			var err error
			v, err = EvalExpression(st, stk, e.Inner)
			if err != nil {
				return nil, err
			}
		}
		return nil, &evalerr.ReturnSignal{Span: e.Span(), Value: v}
	}
	// break/continue and other keywords are loop-control concerns outside
	// the core evaluator's scope (no looping construct is named in §3);
	// they evaluate to Nothing here.
	return value.NewNothing(e.Span()), nil
}
