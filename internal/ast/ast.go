// Package ast defines the parsed-program representation the evaluator
// walks: blocks, pipelines, pipeline elements and expressions. Building
// these trees is a parser's job and out of scope here; this package only
// declares the shapes the evaluator dispatches on. See internal/astbuild
// for a programmatic constructor used by tests and the demo CLI.
package ast

import "github.com/cwbudde/quill/internal/value"

type (
	BlockID = value.BlockID
	VarID   = value.VarID
	DeclID  = value.DeclID
	Span    = value.Span
)

// Expr is implemented by every expression-node variant in §3.
type Expr interface {
	Span() Span
	exprNode()
}

// exprBase is embedded by every expression-node variant to carry its span.
// It has no exported field — construct one with NewExprBase so external
// packages (astbuild, tests) can build nodes without reaching into
// unexported state.
type exprBase struct{ span Span }

func NewExprBase(sp Span) exprBase { return exprBase{span: sp} }

func (e exprBase) Span() Span { return e.span }
func (exprBase) exprNode()    {}

// ---- Literals ----

type BoolLit struct {
	exprBase
	Val bool
}

type IntLit struct {
	exprBase
	Val int64
}

type FloatLit struct {
	exprBase
	Val float64
}

type StringLit struct {
	exprBase
	Val string
}

type BinaryLit struct {
	exprBase
	Val []byte
}

type DateLit struct {
	exprBase
	UnixNanos int64
}

type FilepathLit struct {
	exprBase
	Val string
}

type DirectoryLit struct {
	exprBase
	Val string
}

type GlobLit struct {
	exprBase
	Val string
}

type NothingLit struct{ exprBase }
type GarbageLit struct{ exprBase }

// ---- Variables & paths ----

type Var struct {
	exprBase
	ID VarID
}

type VarDecl struct {
	exprBase
	ID VarID
}

type CellPathExpr struct {
	exprBase
	Members []value.PathMember
}

// FullCellPath is head (any expression, usually a Var) plus a tail of path
// members walked against the head's evaluated value.
type FullCellPath struct {
	exprBase
	Head Expr
	Tail []value.PathMember
}

// ---- Range ----

type RangeExpr struct {
	exprBase
	From Expr // nil => omitted
	Next Expr // nil => omitted
	To   Expr // nil => omitted
	Op   value.RangeOp
}

// ---- Containers ----

type ListExpr struct {
	exprBase
	Items []Expr
}

type RecordPair struct {
	Key Expr
	Val Expr
}

type RecordExpr struct {
	exprBase
	Pairs []RecordPair
}

type TableExpr struct {
	exprBase
	Headers []Expr
	Rows    [][]Expr
}

// ---- Calls ----

type NamedArg struct {
	LongFlag  string
	ShortFlag rune
	Value     Expr // nil when the flag carries no value (a boolean switch)
	Span      Span
}

type Call struct {
	Head       Span
	DeclID     DeclID
	Positional []Expr
	Named      []NamedArg
	CallSpan   Span
}

type CallExpr struct {
	exprBase
	Call Call
}

type ExternalCallExpr struct {
	exprBase
	Head            Expr
	Args            []Expr
	IsSubexpression bool
}

// ---- Blocks / closures ----

type SubexpressionExpr struct {
	exprBase
	Block BlockID
}

type BlockExpr struct {
	exprBase
	Block BlockID
}

type ClosureExpr struct {
	exprBase
	Block BlockID
}

type RowConditionExpr struct {
	exprBase
	Block BlockID
}

// ---- Operators ----

type OperatorExpr struct {
	exprBase
	Op value.Op
}

type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
	BoolXor
)

type UnaryNotExpr struct {
	exprBase
	Inner Expr
}

// AssignOp identifies plain `=` vs. a compound operator paired with it
// (e.g. `+=` reads the lhs, applies Math, then assigns).
type AssignOp struct {
	Compound bool
	Math     value.Op
}

type BinaryOpExpr struct {
	exprBase
	Lhs Expr
	Rhs Expr

	// Exactly one of the following selects the operator family. ValueOp
	// covers every family that routes through value.Compute: arithmetic,
	// comparison, containment, regex, string-edge and bitwise operators.
	Bool    *BoolOp
	ValueOp *value.Op
	Assign  *AssignOp
}

// ---- Keyword / misc ----

type KeywordKind int

const (
	KeywordReturn KeywordKind = iota
	KeywordBreak
	KeywordContinue
	KeywordOther
)

type KeywordExpr struct {
	exprBase
	Name  string
	Kind  KeywordKind
	Inner Expr // nil for bare keywords like `break`
}

type ValueWithUnitExpr struct {
	exprBase
	Inner Expr
	Unit  string
}

type StringInterpolationExpr struct {
	exprBase
	Parts []Expr
}

type OverlayExpr struct {
	exprBase
	Name string
}

type ImportPatternExpr struct{ exprBase }
type SignatureExpr struct{ exprBase }

// ---- Pipeline structure ----

type RedirectKind int

const (
	RedirectStdout RedirectKind = iota
	RedirectStderr
	RedirectStdoutAndStderr
)

// PipelineElement is implemented by Expression/Redirection/And/Or.
type PipelineElement interface {
	ElemSpan() Span
	pipelineElem()
}

type elemBase struct{ span Span }

func NewElemBase(sp Span) elemBase { return elemBase{span: sp} }

func (e elemBase) ElemSpan() Span { return e.span }
func (elemBase) pipelineElem()    {}

type ExpressionElement struct {
	elemBase
	Expr Expr
}

type RedirectionElement struct {
	elemBase
	Kind   RedirectKind
	Target Expr
}

type AndElement struct {
	elemBase
	Expr Expr
}

type OrElement struct {
	elemBase
	Expr Expr
}

type Pipeline struct {
	Elements []PipelineElement
}

// Block is the unit of a user-defined function body: an ordered list of
// pipelines plus the metadata the call dispatcher and environment
// redirection need.
type Block struct {
	ID          BlockID
	Pipelines   []Pipeline
	Captures    []VarID
	// Params names this block's own positional parameters when it is used
	// as a closure (e.g. the implicit `$it` or an explicit `|row|`
	// parameter passed to `each`). A plain command body leaves this empty.
	Params      []VarID
	RedirectEnv bool
	Recursive   bool
	Span        Span
}
