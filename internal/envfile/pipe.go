package envfile

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/secrets"
)

// devFD is where the platform exposes open descriptors as paths.
const devFD = "/dev/fd"

// childFD is the descriptor number the read end lands on in the child:
// the first ExtraFiles entry, after stdin, stdout, and stderr.
const childFD = 3

// PipeSupported reports whether this system can address inherited pipe
// ends as paths. Returns an error wrapping ErrPipeUnsupported otherwise.
func PipeSupported() error {
	if _, err := os.Stat(devFD); err != nil {
		return fmt.Errorf("%w: %s not present", kerrors.ErrPipeUnsupported, devFD)
	}
	return nil
}

// MaterializePipe exposes the blob through an anonymous pipe. The read end
// is handed to the child as fd 3 and addressed as /dev/fd/3; no directory
// entry ever exists and the content is readable exactly once. The blob is
// written from a goroutine so content larger than the kernel pipe buffer
// cannot deadlock materialization.
func MaterializePipe(blob secrets.Blob) (Artifact, error) {
	if err := PipeSupported(); err != nil {
		return nil, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}

	p := &pipeArtifact{r: r, written: make(chan error, 1)}
	go func() {
		_, writeErr := w.Write(blob.Bytes())
		if closeErr := w.Close(); writeErr == nil {
			writeErr = closeErr
		}
		p.written <- writeErr
	}()

	return p, nil
}

type pipeArtifact struct {
	r       *os.File
	once    sync.Once
	written chan error
}

func (p *pipeArtifact) Path() string {
	return fmt.Sprintf("%s/%d", devFD, childFD)
}

func (p *pipeArtifact) ExtraFile() *os.File {
	return p.r
}

// Cleanup closes the read end, which unblocks the writer goroutine with
// EPIPE if the child never drained the pipe, then waits for the writer.
func (p *pipeArtifact) Cleanup() error {
	var err error
	p.once.Do(func() {
		if closeErr := p.r.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			err = closeErr
		}
		// EPIPE means the child chose not to drain the pipe; that is
		// not a cleanup failure.
		if writeErr := <-p.written; writeErr != nil && err == nil && !errors.Is(writeErr, syscall.EPIPE) {
			err = writeErr
		}
	})
	return err
}
