package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer opens X-Ray subsegments under whatever segment the context carries.
// Outside Lambda there is usually none, and work runs untraced. A nil
// *Tracer is valid.
type Tracer struct {
	prefix string
}

func NewTracer(serviceName string) *Tracer {
	return &Tracer{prefix: serviceName + "."}
}

// Trace runs fn inside a subsegment named "<service>.<name>" and records
// its error on the subsegment.
func (t *Tracer) Trace(ctx context.Context, name string, fn func(context.Context) error) error {
	if t == nil || xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}

	subCtx, sub := xray.BeginSubsegment(ctx, t.prefix+name)
	if sub == nil {
		return fn(ctx)
	}
	err := fn(subCtx)
	sub.Close(err)
	return err
}

// Annotate sets an indexed annotation, e.g. the game date being resolved.
func (t *Tracer) Annotate(ctx context.Context, key, value string) {
	if t == nil {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
