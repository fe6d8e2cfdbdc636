package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/stepthrough/internal/trace"
)

// Request is one tagged load.
type Request struct {
	Tag string
	Ref string
}

// Response carries the result of a Request back to the event loop.
type Response struct {
	Tag   string
	Ref   string
	Trace *trace.Trace
	Err   error
}

// Loader tracks the latest in-flight request. Begin, Resolve and Retry are
// called from the event loop only; Fetch may run on any goroutine.
type Loader struct {
	src     Source
	log     *zap.Logger
	latest  Request
	pending bool
}

func NewLoader(src Source, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{src: src, log: log}
}

// Begin supersedes any in-flight request.
func (l *Loader) Begin(ref string) Request {
	l.latest = Request{Tag: uuid.NewString(), Ref: ref}
	l.pending = true
	l.log.Debug("trace load started", zap.String("ref", ref), zap.String("tag", l.latest.Tag))
	return l.latest
}

// Retry re-issues the last reference under a fresh tag.
func (l *Loader) Retry() (Request, bool) {
	if l.latest.Ref == "" {
		return Request{}, false
	}
	return l.Begin(l.latest.Ref), true
}

func (l *Loader) Fetch(ctx context.Context, req Request) Response {
	t, err := l.src.Fetch(ctx, req.Ref)
	return Response{Tag: req.Tag, Ref: req.Ref, Trace: t, Err: err}
}

// Resolve returns the response's trace if it answers the latest request.
// Responses for superseded requests yield ErrStaleResponse.
func (l *Loader) Resolve(resp Response) (*trace.Trace, error) {
	if !l.pending || resp.Tag != l.latest.Tag {
		l.log.Debug("stale trace response discarded", zap.String("ref", resp.Ref), zap.String("tag", resp.Tag))
		return nil, fmt.Errorf("%w: %s", ErrStaleResponse, resp.Ref)
	}
	l.pending = false
	if resp.Err != nil {
		l.log.Warn("trace load failed", zap.String("ref", resp.Ref), zap.Error(resp.Err))
		return nil, resp.Err
	}
	return resp.Trace, nil
}

func (l *Loader) Pending() bool { return l.pending }

func (l *Loader) LastRef() string { return l.latest.Ref }
