// Package astbuild constructs ast.Block/ast.Expr trees programmatically.
// No parser exists in this module (spec.md scopes one out entirely); tests,
// the cmd/quillrun demo binary and the YAML fixture loader all go through
// here instead of writing ast node literals by hand.
package astbuild

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/value"
)

// Sp is a small helper for building a span from plain ints, since most
// programmatically-built fixtures don't care about exact byte offsets.
func Sp(start, end int) value.Span { return value.Span{Start: start, End: end} }

// Every literal/expression constructor below seeds its embedded exprBase via
// a positional composite literal: exprBase is unexported, so a named-field
// literal naming it isn't reachable from outside package ast.

func BoolLit(v bool, sp value.Span) *ast.BoolLit {
	return &ast.BoolLit{ast.NewExprBase(sp), v}
}

func IntLit(v int64, sp value.Span) *ast.IntLit {
	return &ast.IntLit{ast.NewExprBase(sp), v}
}

func FloatLit(v float64, sp value.Span) *ast.FloatLit {
	return &ast.FloatLit{ast.NewExprBase(sp), v}
}

func StringLit(v string, sp value.Span) *ast.StringLit {
	return &ast.StringLit{ast.NewExprBase(sp), v}
}

func NothingLit(sp value.Span) *ast.NothingLit {
	return &ast.NothingLit{ast.NewExprBase(sp)}
}

func VarExpr(id value.VarID, sp value.Span) *ast.Var {
	return &ast.Var{ast.NewExprBase(sp), id}
}

func VarDecl(id value.VarID, sp value.Span) *ast.VarDecl {
	return &ast.VarDecl{ast.NewExprBase(sp), id}
}

func List(items []ast.Expr, sp value.Span) *ast.ListExpr {
	return &ast.ListExpr{ast.NewExprBase(sp), items}
}

func Record(pairs []ast.RecordPair, sp value.Span) *ast.RecordExpr {
	return &ast.RecordExpr{ast.NewExprBase(sp), pairs}
}

func Pair(key, val ast.Expr) ast.RecordPair { return ast.RecordPair{Key: key, Val: val} }

func BinaryValueOp(lhs, rhs ast.Expr, op value.Op, sp value.Span) *ast.BinaryOpExpr {
	return &ast.BinaryOpExpr{
		ast.NewExprBase(sp),
		lhs, rhs,
		nil, &op, nil,
	}
}

func BinaryBoolOp(lhs, rhs ast.Expr, op ast.BoolOp, sp value.Span) *ast.BinaryOpExpr {
	return &ast.BinaryOpExpr{
		ast.NewExprBase(sp),
		lhs, rhs,
		&op, nil, nil,
	}
}

func Assign(lhs, rhs ast.Expr, compound bool, math value.Op, sp value.Span) *ast.BinaryOpExpr {
	return &ast.BinaryOpExpr{
		ast.NewExprBase(sp),
		lhs, rhs,
		nil, nil, &ast.AssignOp{Compound: compound, Math: math},
	}
}

func NamedArgSwitch(long string, sp value.Span) ast.NamedArg {
	return ast.NamedArg{LongFlag: long, Span: sp}
}

func NamedArgValue(long string, val ast.Expr, sp value.Span) ast.NamedArg {
	return ast.NamedArg{LongFlag: long, Value: val, Span: sp}
}

func CallExpr(declID value.DeclID, positional []ast.Expr, named []ast.NamedArg, sp value.Span) *ast.CallExpr {
	return &ast.CallExpr{
		ast.NewExprBase(sp),
		ast.Call{Head: sp, DeclID: declID, Positional: positional, Named: named, CallSpan: sp},
	}
}

func ExternalCall(head ast.Expr, args []ast.Expr, isSubexpr bool, sp value.Span) *ast.ExternalCallExpr {
	return &ast.ExternalCallExpr{ast.NewExprBase(sp), head, args, isSubexpr}
}

func ClosureExpr(blockID value.BlockID, sp value.Span) *ast.ClosureExpr {
	return &ast.ClosureExpr{ast.NewExprBase(sp), blockID}
}

func SubexpressionExpr(blockID value.BlockID, sp value.Span) *ast.SubexpressionExpr {
	return &ast.SubexpressionExpr{ast.NewExprBase(sp), blockID}
}

func KeywordReturn(inner ast.Expr, sp value.Span) *ast.KeywordExpr {
	return &ast.KeywordExpr{ast.NewExprBase(sp), "return", ast.KeywordReturn, inner}
}

func FullCellPath(head ast.Expr, tail []value.PathMember, sp value.Span) *ast.FullCellPath {
	return &ast.FullCellPath{ast.NewExprBase(sp), head, tail}
}

// ---- Pipeline / block assembly ----

func ExprElement(e ast.Expr, sp value.Span) ast.PipelineElement {
	return &ast.ExpressionElement{ast.NewElemBase(sp), e}
}

func RedirectElement(kind ast.RedirectKind, target ast.Expr, sp value.Span) ast.PipelineElement {
	return &ast.RedirectionElement{ast.NewElemBase(sp), kind, target}
}

func Pipeline(elems ...ast.PipelineElement) ast.Pipeline { return ast.Pipeline{Elements: elems} }

// BlockBuilder assembles an ast.Block fluently.
type BlockBuilder struct {
	block ast.Block
}

func NewBlockBuilder() *BlockBuilder { return &BlockBuilder{} }

func (b *BlockBuilder) Pipeline(p ast.Pipeline) *BlockBuilder {
	b.block.Pipelines = append(b.block.Pipelines, p)
	return b
}

func (b *BlockBuilder) Captures(ids ...value.VarID) *BlockBuilder {
	b.block.Captures = ids
	return b
}

func (b *BlockBuilder) Params(ids ...value.VarID) *BlockBuilder {
	b.block.Params = ids
	return b
}

func (b *BlockBuilder) Recursive() *BlockBuilder {
	b.block.Recursive = true
	return b
}

func (b *BlockBuilder) RedirectEnv() *BlockBuilder {
	b.block.RedirectEnv = true
	return b
}

func (b *BlockBuilder) Span(sp value.Span) *BlockBuilder {
	b.block.Span = sp
	return b
}

func (b *BlockBuilder) Build() *ast.Block {
	block := b.block
	return &block
}
