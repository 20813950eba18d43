package astbuild

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/value"
)

// Fixture is the YAML document shape loaded by LoadFixture: a flat list of
// named variables plus one or more blocks, the last of which is the
// fixture's entry point. Variable and decl names are resolved against the
// engine's registries at load time rather than baked into the tree, so one
// fixture file can be replayed against any State with the same decls
// registered.
type Fixture struct {
	Vars   []FixtureVar   `yaml:"vars"`
	Blocks []FixtureBlock `yaml:"blocks"`
}

type FixtureVar struct {
	Name    string `yaml:"name"`
	Mutable bool   `yaml:"mutable"`
}

type FixtureBlock struct {
	Captures    []string         `yaml:"captures"`
	Params      []string         `yaml:"params"`
	RedirectEnv bool             `yaml:"redirect_env"`
	Recursive   bool             `yaml:"recursive"`
	Pipelines   []FixturePipe    `yaml:"pipelines"`
}

type FixturePipe struct {
	Elements []FixtureElement `yaml:"elements"`
}

// FixtureElement is one pipeline element. Kind selects which of the other
// fields apply: "expr" (Expr), "and" (Expr), "or" (Expr), or "redirect"
// (Redirect + Expr as the target).
type FixtureElement struct {
	Kind     string      `yaml:"kind"`
	Expr     *FixtureExpr `yaml:"expr"`
	Redirect string      `yaml:"redirect"` // "stdout" | "stderr" | "stdout+stderr"
}

// FixtureExpr is a tagged union over every expression kind astbuild can
// construct. Only the fields matching Kind are read.
type FixtureExpr struct {
	Kind string `yaml:"kind"`

	Bool   *bool    `yaml:"bool"`
	Int    *int64   `yaml:"int"`
	Float  *float64 `yaml:"float"`
	String *string  `yaml:"string"`

	Var string `yaml:"var"` // variable name, for kind "var"/"var_decl"

	Items  []FixtureExpr `yaml:"items"`  // kind "list"
	Fields []FixtureField `yaml:"fields"` // kind "record"

	// kind "binary_value" / "binary_bool" / "assign"
	Op       string       `yaml:"op"`
	Lhs      *FixtureExpr `yaml:"lhs"`
	Rhs      *FixtureExpr `yaml:"rhs"`
	Compound bool         `yaml:"compound"`

	// kind "call"
	Decl  string                `yaml:"decl"`
	Args  []FixtureExpr         `yaml:"args"`
	Named []FixtureNamedArg     `yaml:"named"`

	// kind "external"
	Head *FixtureExpr  `yaml:"head"`

	// kind "closure" / "subexpression" / "block"
	Block int `yaml:"block"` // index into Fixture.Blocks, 0-based

	// kind "return"
	Inner *FixtureExpr `yaml:"inner"`
}

type FixtureField struct {
	Key string      `yaml:"key"`
	Val FixtureExpr `yaml:"val"`
}

type FixtureNamedArg struct {
	Long  string       `yaml:"long"`
	Value *FixtureExpr `yaml:"value"`
}

var valueOps = map[string]value.Op{
	"add": value.OpAdd, "sub": value.OpSub, "mul": value.OpMul, "div": value.OpDiv,
	"floordiv": value.OpFloorDiv, "mod": value.OpMod, "pow": value.OpPow, "concat": value.OpConcat,
	"lt": value.OpLt, "lte": value.OpLte, "gt": value.OpGt, "gte": value.OpGte,
	"eq": value.OpEq, "neq": value.OpNeq, "in": value.OpIn, "not-in": value.OpNotIn,
	"regex-match": value.OpRegexMatch, "regex-not-match": value.OpRegexNotMatch,
	"starts-with": value.OpStartsWith, "ends-with": value.OpEndsWith,
	"bit-and": value.OpBitAnd, "bit-or": value.OpBitOr, "bit-xor": value.OpBitXor,
	"shl": value.OpShl, "shr": value.OpShr,
}

var boolOps = map[string]ast.BoolOp{
	"and": ast.BoolAnd, "or": ast.BoolOr, "xor": ast.BoolXor,
}

// loader resolves fixture-local names to the ids the engine registries
// assign, so the same fixture file produces a consistent tree no matter how
// many times it's loaded against a fresh State.
type loader struct {
	st      *engine.State
	varIDs  map[string]value.VarID
	nextVar value.VarID
	blocks  []*ast.Block // populated in pipelined passes so forward refs resolve
}

// LoadFixtureFile reads and parses a YAML fixture from disk, then builds it
// against st (registering variables in st.Vars and blocks in st.Blocks).
// Returns the entry-point block (the last one declared in the file).
func LoadFixtureFile(st *engine.State, path string) (*ast.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("astbuild: read fixture %s: %w", path, err)
	}
	return LoadFixture(st, data)
}

// LoadFixture parses and builds a YAML fixture already read into memory.
func LoadFixture(st *engine.State, data []byte) (*ast.Block, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("astbuild: parse fixture: %w", err)
	}
	if len(fx.Blocks) == 0 {
		return nil, fmt.Errorf("astbuild: fixture declares no blocks")
	}

	ld := &loader{st: st, varIDs: make(map[string]value.VarID), nextVar: 1}
	for _, v := range fx.Vars {
		id := ld.nextVar
		ld.nextVar++
		ld.varIDs[v.Name] = id
		st.Vars.Declare(id, v.Name, v.Mutable)
	}

	built := make([]*ast.Block, len(fx.Blocks))
	ld.blocks = built
	// Two passes: blocks referenced by closure/subexpression index may be
	// declared after their first reference, so register all block ids up
	// front and fill bodies in a second pass.
	for i := range fx.Blocks {
		built[i] = &ast.Block{}
		built[i].ID = st.Blocks.Register(built[i])
	}
	for i, fb := range fx.Blocks {
		if err := ld.fillBlock(built[i], fb); err != nil {
			return nil, fmt.Errorf("astbuild: block %d: %w", i, err)
		}
	}
	return built[len(built)-1], nil
}

func (ld *loader) fillBlock(b *ast.Block, fb FixtureBlock) error {
	for _, name := range fb.Captures {
		b.Captures = append(b.Captures, ld.varID(name))
	}
	for _, name := range fb.Params {
		b.Params = append(b.Params, ld.varID(name))
	}
	b.RedirectEnv = fb.RedirectEnv
	b.Recursive = fb.Recursive

	for _, fp := range fb.Pipelines {
		elems := make([]ast.PipelineElement, 0, len(fp.Elements))
		for _, fe := range fp.Elements {
			elem, err := ld.buildElement(fe)
			if err != nil {
				return err
			}
			elems = append(elems, elem)
		}
		b.Pipelines = append(b.Pipelines, ast.Pipeline{Elements: elems})
	}
	return nil
}

func (ld *loader) varID(name string) value.VarID {
	if id, ok := ld.varIDs[name]; ok {
		return id
	}
	id := ld.nextVar
	ld.nextVar++
	ld.varIDs[name] = id
	ld.st.Vars.Declare(id, name, false)
	return id
}

func (ld *loader) buildElement(fe FixtureElement) (ast.PipelineElement, error) {
	switch fe.Kind {
	case "expression", "expr", "":
		e, err := ld.buildExpr(fe.Expr)
		if err != nil {
			return nil, err
		}
		return ExprElement(e, e.Span()), nil
	case "and":
		e, err := ld.buildExpr(fe.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.AndElement{ast.NewElemBase(e.Span()), e}, nil
	case "or":
		e, err := ld.buildExpr(fe.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.OrElement{ast.NewElemBase(e.Span()), e}, nil
	case "redirect":
		target, err := ld.buildExpr(fe.Expr)
		if err != nil {
			return nil, err
		}
		kind := ast.RedirectStdout
		switch fe.Redirect {
		case "stderr":
			kind = ast.RedirectStderr
		case "stdout+stderr":
			kind = ast.RedirectStdoutAndStderr
		}
		return RedirectElement(kind, target, target.Span()), nil
	default:
		return nil, fmt.Errorf("unknown pipeline element kind %q", fe.Kind)
	}
}

func (ld *loader) buildExpr(fe *FixtureExpr) (ast.Expr, error) {
	if fe == nil {
		return NothingLit(value.Unknown), nil
	}
	switch fe.Kind {
	case "bool":
		v := false
		if fe.Bool != nil {
			v = *fe.Bool
		}
		return BoolLit(v, value.Unknown), nil
	case "int":
		var v int64
		if fe.Int != nil {
			v = *fe.Int
		}
		return IntLit(v, value.Unknown), nil
	case "float":
		var v float64
		if fe.Float != nil {
			v = *fe.Float
		}
		return FloatLit(v, value.Unknown), nil
	case "string":
		var v string
		if fe.String != nil {
			v = *fe.String
		}
		return StringLit(v, value.Unknown), nil
	case "nothing":
		return NothingLit(value.Unknown), nil
	case "var":
		return VarExpr(ld.varID(fe.Var), value.Unknown), nil
	case "var_decl":
		return VarDecl(ld.varID(fe.Var), value.Unknown), nil
	case "list":
		items := make([]ast.Expr, len(fe.Items))
		for i := range fe.Items {
			it, err := ld.buildExpr(&fe.Items[i])
			if err != nil {
				return nil, err
			}
			items[i] = it
		}
		return List(items, value.Unknown), nil
	case "record":
		pairs := make([]ast.RecordPair, len(fe.Fields))
		for i, f := range fe.Fields {
			val, err := ld.buildExpr(&f.Val)
			if err != nil {
				return nil, err
			}
			pairs[i] = Pair(StringLit(f.Key, value.Unknown), val)
		}
		return Record(pairs, value.Unknown), nil
	case "binary_value":
		op, ok := valueOps[fe.Op]
		if !ok {
			return nil, fmt.Errorf("unknown value op %q", fe.Op)
		}
		lhs, err := ld.buildExpr(fe.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := ld.buildExpr(fe.Rhs)
		if err != nil {
			return nil, err
		}
		return BinaryValueOp(lhs, rhs, op, value.Unknown), nil
	case "binary_bool":
		op, ok := boolOps[fe.Op]
		if !ok {
			return nil, fmt.Errorf("unknown bool op %q", fe.Op)
		}
		lhs, err := ld.buildExpr(fe.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := ld.buildExpr(fe.Rhs)
		if err != nil {
			return nil, err
		}
		return BinaryBoolOp(lhs, rhs, op, value.Unknown), nil
	case "assign":
		lhs, err := ld.buildExpr(fe.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := ld.buildExpr(fe.Rhs)
		if err != nil {
			return nil, err
		}
		op := value.OpAdd
		if fe.Op != "" {
			op = valueOps[fe.Op]
		}
		return Assign(lhs, rhs, fe.Compound, op, value.Unknown), nil
	case "call":
		declID, ok := ld.st.Decls.FindDecl(fe.Decl, nil)
		if !ok {
			return nil, fmt.Errorf("unknown declaration %q", fe.Decl)
		}
		args := make([]ast.Expr, len(fe.Args))
		for i := range fe.Args {
			a, err := ld.buildExpr(&fe.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		named := make([]ast.NamedArg, len(fe.Named))
		for i, n := range fe.Named {
			if n.Value == nil {
				named[i] = NamedArgSwitch(n.Long, value.Unknown)
				continue
			}
			v, err := ld.buildExpr(n.Value)
			if err != nil {
				return nil, err
			}
			named[i] = NamedArgValue(n.Long, v, value.Unknown)
		}
		return CallExpr(declID, args, named, value.Unknown), nil
	case "external":
		head, err := ld.buildExpr(fe.Head)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, len(fe.Args))
		for i := range fe.Args {
			a, err := ld.buildExpr(&fe.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return ExternalCall(head, args, false, value.Unknown), nil
	case "closure":
		if fe.Block < 0 || fe.Block >= len(ld.blocks) {
			return nil, fmt.Errorf("closure references out-of-range block %d", fe.Block)
		}
		return ClosureExpr(ld.blocks[fe.Block].ID, value.Unknown), nil
	case "subexpression":
		if fe.Block < 0 || fe.Block >= len(ld.blocks) {
			return nil, fmt.Errorf("subexpression references out-of-range block %d", fe.Block)
		}
		return SubexpressionExpr(ld.blocks[fe.Block].ID, value.Unknown), nil
	case "block":
		if fe.Block < 0 || fe.Block >= len(ld.blocks) {
			return nil, fmt.Errorf("block references out-of-range block %d", fe.Block)
		}
		return &ast.BlockExpr{ast.NewExprBase(value.Unknown), ld.blocks[fe.Block].ID}, nil
	case "return":
		inner, err := ld.buildExpr(fe.Inner)
		if err != nil {
			return nil, err
		}
		return KeywordReturn(inner, value.Unknown), nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", fe.Kind)
	}
}
