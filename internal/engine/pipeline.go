package engine

import "github.com/cwbudde/quill/internal/value"

// Metadata travels alongside a PipelineData without participating in its
// variant dispatch (e.g. a content-type hint for `save`/`table`).
type Metadata struct {
	ContentType string
}

// PipelineDataKind discriminates PipelineData's four variants.
type PipelineDataKind int

const (
	PDEmpty PipelineDataKind = iota
	PDValue
	PDListStream
	PDExternalStream
)

// ByteChunk is one delivery from an ExternalStream's stdout/stderr
// producer; Err is set (with Data possibly nil) when the producer failed.
type ByteChunk struct {
	Data []byte
	Err  error
}

// ExternalStream bundles the three independent lazy producers a child
// process yields: stdout bytes, stderr bytes, and eventually an exit code.
// Each channel is read at most once by the pipeline element that consumes
// it — draining is destructive, per the data-model invariant.
type ExternalStream struct {
	Stdout         <-chan ByteChunk
	Stderr         <-chan ByteChunk
	ExitCode       <-chan int
	Span           value.Span
	Metadata       Metadata
	TrimEndNewline bool
}

// ListStream is a restartable-only-once lazy sequence of values.
type ListStream struct {
	Next func() (value.Value, bool)
}

// PipelineData is the unit threaded through every pipeline element.
type PipelineData struct {
	Kind     PipelineDataKind
	Value    value.Value
	List     *ListStream
	External *ExternalStream
	Metadata Metadata
}

func Empty() PipelineData { return PipelineData{Kind: PDEmpty} }

func FromValue(v value.Value) PipelineData {
	return PipelineData{Kind: PDValue, Value: v}
}

func FromListStream(ls *ListStream) PipelineData {
	return PipelineData{Kind: PDListStream, List: ls}
}

func FromExternalStream(es *ExternalStream) PipelineData {
	return PipelineData{Kind: PDExternalStream, External: es}
}

// IntoValue collapses any PipelineData variant into a single Value, the
// operation every Call/ExternalCall/Subexpression expression performs on
// its result before handing it back to the expression evaluator. Draining
// a ListStream or ExternalStream here materializes it fully.
func (p PipelineData) IntoValue(span value.Span) value.Value {
	switch p.Kind {
	case PDEmpty:
		return value.NewNothing(span)
	case PDValue:
		return p.Value
	case PDListStream:
		items := []value.Value{}
		if p.List != nil {
			for {
				v, ok := p.List.Next()
				if !ok {
					break
				}
				items = append(items, v)
			}
		}
		return value.NewList(items, span)
	case PDExternalStream:
		return drainExternalToValue(p.External, span)
	default:
		return value.NewNothing(span)
	}
}

func drainExternalToValue(es *ExternalStream, span value.Span) value.Value {
	if es == nil {
		return value.NewNothing(span)
	}
	var out []byte
	if es.Stdout != nil {
		for chunk := range es.Stdout {
			if chunk.Err == nil {
				out = append(out, chunk.Data...)
			}
		}
	}
	if es.TrimEndNewline {
		for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == '\r') {
			out = out[:len(out)-1]
		}
	}
	return value.NewString(string(out), span)
}
