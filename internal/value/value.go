// Package value implements the typed value algebra that flows through the
// evaluator: scalars, containers, closures and the operator families that
// combine them.
package value

import "fmt"

// Span is a byte range into the original source, carried by every Value for
// diagnostics. It has no meaning without an accompanying source map, which
// lives outside this package.
type Span struct {
	Start int
	End   int
}

// Unknown is used for values synthesized without a source location (for
// example $nu/$env records built on the fly).
var Unknown = Span{Start: 0, End: 0}

// Kind discriminates the tagged union described by the data model.
type Kind int

const (
	KindNothing Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBinary
	KindString
	KindFilesize
	KindDuration
	KindDate
	KindRange
	KindCellPath
	KindList
	KindRecord
	KindClosure
	KindBlock
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNothing:
		return "nothing"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBinary:
		return "binary"
	case KindString:
		return "string"
	case KindFilesize:
		return "filesize"
	case KindDuration:
		return "duration"
	case KindDate:
		return "date"
	case KindRange:
		return "range"
	case KindCellPath:
		return "cell-path"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindClosure:
		return "closure"
	case KindBlock:
		return "block"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a runtime value. Every variant in the data model implements it.
type Value interface {
	Kind() Kind
	Span() Span
	// WithSpan returns a copy of the value tagged with a new span, used when
	// a literal is re-homed onto the expression that produced it.
	WithSpan(Span) Value
	// Display renders the value the way piping into `to string` would: the
	// engine-wide display-for-pipeline convention referenced throughout the
	// expression evaluator.
	Display() string
}

// base is embedded by every concrete Value to carry its span.
type base struct {
	span Span
}

func (b base) Span() Span { return b.span }

// ---- Nothing ----

type Nothing struct{ base }

func NewNothing(sp Span) Nothing          { return Nothing{base{sp}} }
func (Nothing) Kind() Kind                { return KindNothing }
func (n Nothing) WithSpan(sp Span) Value  { n.span = sp; return n }
func (Nothing) Display() string           { return "" }

// ---- Bool ----

type Bool struct {
	base
	Val bool
}

func NewBool(v bool, sp Span) Bool { return Bool{base{sp}, v} }
func (Bool) Kind() Kind            { return KindBool }
func (b Bool) WithSpan(sp Span) Value {
	b.span = sp
	return b
}
func (b Bool) Display() string {
	if b.Val {
		return "true"
	}
	return "false"
}

// ---- Int ----

type Int struct {
	base
	Val int64
}

func NewInt(v int64, sp Span) Int { return Int{base{sp}, v} }
func (Int) Kind() Kind            { return KindInt }
func (i Int) WithSpan(sp Span) Value {
	i.span = sp
	return i
}
func (i Int) Display() string { return fmt.Sprintf("%d", i.Val) }

// ---- Float ----

type Float struct {
	base
	Val float64
}

func NewFloat(v float64, sp Span) Float { return Float{base{sp}, v} }
func (Float) Kind() Kind                { return KindFloat }
func (f Float) WithSpan(sp Span) Value {
	f.span = sp
	return f
}
func (f Float) Display() string { return fmt.Sprintf("%g", f.Val) }

// ---- Binary ----

type Binary struct {
	base
	Val []byte
}

func NewBinary(v []byte, sp Span) Binary { return Binary{base{sp}, v} }
func (Binary) Kind() Kind                { return KindBinary }
func (bv Binary) WithSpan(sp Span) Value {
	bv.span = sp
	return bv
}
func (bv Binary) Display() string { return fmt.Sprintf("% x", bv.Val) }

// ---- String ----

type String struct {
	base
	Val string
}

func NewString(v string, sp Span) String { return String{base{sp}, v} }
func (String) Kind() Kind                { return KindString }
func (s String) WithSpan(sp Span) Value {
	s.span = sp
	return s
}
func (s String) Display() string { return s.Val }

// ---- Filesize (bytes) ----

type Filesize struct {
	base
	Bytes int64
}

func NewFilesize(n int64, sp Span) Filesize { return Filesize{base{sp}, n} }
func (Filesize) Kind() Kind                 { return KindFilesize }
func (f Filesize) WithSpan(sp Span) Value {
	f.span = sp
	return f
}
func (f Filesize) Display() string { return fmt.Sprintf("%d B", f.Bytes) }

// ---- Duration (nanoseconds) ----

type Duration struct {
	base
	Nanos int64
}

func NewDuration(n int64, sp Span) Duration { return Duration{base{sp}, n} }
func (Duration) Kind() Kind                 { return KindDuration }
func (d Duration) WithSpan(sp Span) Value {
	d.span = sp
	return d
}
func (d Duration) Display() string { return fmt.Sprintf("%dns", d.Nanos) }

// ---- Date ----

// Date stores a Unix nanosecond timestamp; parsing/formatting are a
// collaborator concern and live outside this package.
type Date struct {
	base
	UnixNanos int64
}

func NewDate(unixNanos int64, sp Span) Date { return Date{base{sp}, unixNanos} }
func (Date) Kind() Kind                     { return KindDate }
func (d Date) WithSpan(sp Span) Value {
	d.span = sp
	return d
}
func (d Date) Display() string { return fmt.Sprintf("@%d", d.UnixNanos) }

// ---- Range ----

// RangeOp selects inclusive vs. exclusive upper bounds.
type RangeOp int

const (
	RangeInclusive RangeOp = iota
	RangeExclusive
)

type Range struct {
	base
	From Value // nil means unbounded
	Step Value // nil means default step of 1
	To   Value // nil means unbounded
	Op   RangeOp
}

func NewRange(from, step, to Value, op RangeOp, sp Span) Range {
	return Range{base{sp}, from, step, to, op}
}
func (Range) Kind() Kind { return KindRange }
func (r Range) WithSpan(sp Span) Value {
	r.span = sp
	return r
}
func (r Range) Display() string {
	sep := ".."
	if r.Op == RangeInclusive {
		sep = "..="
	}
	return fmt.Sprintf("%v%s%v", r.From, sep, r.To)
}

// ---- CellPath ----

// PathMember is either a string column name (with an `Optional` marker for
// `?.`-style accesses) or an integer list index.
type PathMember struct {
	Name     string
	Index    int
	IsName   bool
	Optional bool
}

type CellPath struct {
	base
	Members []PathMember
}

func NewCellPath(members []PathMember, sp Span) CellPath { return CellPath{base{sp}, members} }
func (CellPath) Kind() Kind                               { return KindCellPath }
func (c CellPath) WithSpan(sp Span) Value {
	c.span = sp
	return c
}
func (c CellPath) Display() string {
	out := ""
	for _, m := range c.Members {
		if m.IsName {
			out += "." + m.Name
		} else {
			out += fmt.Sprintf(".%d", m.Index)
		}
	}
	return out
}

// ---- List ----

type List struct {
	base
	Items []Value
}

func NewList(items []Value, sp Span) List { return List{base{sp}, items} }
func (List) Kind() Kind                   { return KindList }
func (l List) WithSpan(sp Span) Value {
	l.span = sp
	return l
}
func (l List) Display() string {
	out := "["
	for i, v := range l.Items {
		if i > 0 {
			out += ", "
		}
		out += v.Display()
	}
	return out + "]"
}

// ---- Record ----

// Record is an insertion-ordered mapping with unique column names, stored as
// parallel slices per the data model.
type Record struct {
	base
	Columns []string
	Values  []Value
}

func NewRecord(columns []string, values []Value, sp Span) Record {
	return Record{base{sp}, columns, values}
}

func (Record) Kind() Kind { return KindRecord }
func (r Record) WithSpan(sp Span) Value {
	r.span = sp
	return r
}
func (r Record) Display() string {
	out := "{"
	for i, c := range r.Columns {
		if i > 0 {
			out += ", "
		}
		out += c + ": " + r.Values[i].Display()
	}
	return out + "}"
}

// Get returns the value stored under column name, if present.
func (r Record) Get(name string) (Value, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Upsert returns a new Record with name set to v, preserving first-seen
// column order and overwriting on a repeat name (last write wins, as
// required for record-literal evaluation).
func (r Record) Upsert(name string, v Value) Record {
	cols := make([]string, len(r.Columns))
	copy(cols, r.Columns)
	vals := make([]Value, len(r.Values))
	copy(vals, r.Values)
	for i, c := range cols {
		if c == name {
			vals[i] = v
			return Record{r.base, cols, vals}
		}
	}
	cols = append(cols, name)
	vals = append(vals, v)
	return Record{r.base, cols, vals}
}

// ---- Closure / Block ----

type BlockID int
type VarID int
type DeclID int

// Closure captures exactly the variable ids declared in its block's
// `captures` set, snapshotted from the defining stack at creation time.
type Closure struct {
	base
	Block    BlockID
	Captures map[VarID]Value
}

func NewClosure(block BlockID, captures map[VarID]Value, sp Span) Closure {
	return Closure{base{sp}, block, captures}
}
func (Closure) Kind() Kind { return KindClosure }
func (c Closure) WithSpan(sp Span) Value {
	c.span = sp
	return c
}
func (c Closure) Display() string { return fmt.Sprintf("<closure %d>", c.Block) }

type Block struct {
	base
	ID BlockID
}

func NewBlock(id BlockID, sp Span) Block { return Block{base{sp}, id} }
func (Block) Kind() Kind                 { return KindBlock }
func (b Block) WithSpan(sp Span) Value {
	b.span = sp
	return b
}
func (b Block) Display() string { return fmt.Sprintf("<block %d>", b.ID) }

// ---- Error ----

// Error wraps an error as a first-class value, used when a pipeline element
// under stderr redirection materializes a failure instead of propagating it.
type Error struct {
	base
	Err error
}

func NewError(err error, sp Span) Error { return Error{base{sp}, err} }
func (Error) Kind() Kind                { return KindError }
func (e Error) WithSpan(sp Span) Value {
	e.span = sp
	return e
}
func (e Error) Display() string { return e.Err.Error() }
