package commands

import (
	"bufio"
	"io"
	"os/exec"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
)

// newRunExternalCommand implements the synthetic `run-external` declaration
// §4.3 dispatches every ExternalCall expression through: a real child
// process, its stdout/stderr drained onto goroutine-fed buffered channels,
// grounded on spec.md §5's concurrency model.
func newRunExternalCommand() engine.Declaration {
	return decl{
		usage:         "Run an external command.",
		knownExternal: true,
		signature: engine.Signature{
			Required: []engine.PositionalParam{{Name: "command"}},
			Rest:     &engine.PositionalParam{Name: "args", Rest: true},
			Named: []engine.NamedParam{
				{Long: "redirect-stdout"},
				{Long: "redirect-stderr"},
				{Long: "trim-end-newline"},
			},
		},
		run: runRunExternal,
	}
}

func runRunExternal(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	if len(call.Positional) == 0 {
		return engine.Empty(), evalerr.ExternalUnsupported(call.Head)
	}

	name, err := evalArgString(st, stk, call.Positional[0])
	if err != nil {
		return engine.Empty(), err
	}
	args := make([]string, 0, len(call.Positional)-1)
	for _, a := range call.Positional[1:] {
		s, err := evalArgString(st, stk, a)
		if err != nil {
			return engine.Empty(), err
		}
		args = append(args, s)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = stk.Cwd

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return engine.Empty(), evalerr.Generic(call.Head, "failed to start external command", err.Error(), "")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return engine.Empty(), evalerr.Generic(call.Head, "failed to start external command", err.Error(), "")
	}
	if err := cmd.Start(); err != nil {
		return engine.Empty(), evalerr.Generic(call.Head, "failed to start external command", err.Error(), "")
	}

	stdoutCh := streamPipe(stdout)
	stderrCh := streamPipe(stderr)
	exitCh := make(chan int, 1)
	go func() {
		err := cmd.Wait()
		code := 0
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else if err != nil {
			code = 1
		}
		exitCh <- code
		close(exitCh)
	}()

	_, trimEndNewline := namedArg(call, "trim-end-newline")

	return engine.FromExternalStream(&engine.ExternalStream{
		Stdout:         stdoutCh,
		Stderr:         stderrCh,
		ExitCode:       exitCh,
		Span:           call.Head,
		TrimEndNewline: trimEndNewline,
	}), nil
}

// streamPipe drains r onto a buffered channel of chunks on its own
// goroutine, closing the channel once r reaches EOF or errors.
func streamPipe(r io.Reader) <-chan engine.ByteChunk {
	out := make(chan engine.ByteChunk, 16)
	go func() {
		defer close(out)
		buf := bufio.NewReader(r)
		chunk := make([]byte, 4096)
		for {
			n, err := buf.Read(chunk)
			if n > 0 {
				data := make([]byte, n)
				copy(data, chunk[:n])
				out <- engine.ByteChunk{Data: data}
			}
			if err != nil {
				if err != io.EOF {
					out <- engine.ByteChunk{Err: err}
				}
				return
			}
		}
	}()
	return out
}
