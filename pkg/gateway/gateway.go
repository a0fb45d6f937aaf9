// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Outcome is the tri-state result of a gateway operation.
type Outcome int

const (
	// OutcomeOK means the object was found, written or deleted.
	OutcomeOK Outcome = iota

	// OutcomeNotFound means the object is absent ("already absent, proceed"
	// on replace/delete).
	OutcomeNotFound

	// OutcomeConflict means the object already exists ("already provisioned,
	// proceed" on create).
	OutcomeConflict

	// OutcomeError means a transient or permanent failure; the accompanying
	// error carries the cause.
	OutcomeError
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithRateLimiter sets a client-side rate limiter applied to every remote call.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(g *Gateway) { g.limiter = l }
}

// WithTracer sets the tracer used to record one span per remote call.
func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

// Gateway is a thin synchronous facade over the cluster object store.
type Gateway struct {
	client  client.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// New creates a Gateway over the given client.
func New(c client.Client, opts ...Option) *Gateway {
	g := &Gateway{
		client: c,
		tracer: noop.NewTracerProvider().Tracer("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get fetches the object by key. Outcome is OutcomeOK with the object
// populated, OutcomeNotFound, or OutcomeError.
func (g *Gateway) Get(ctx context.Context, key client.ObjectKey, obj client.Object) (Outcome, error) {
	ctx, end := g.startSpan(ctx, "get", obj, key.Namespace, key.Name)
	defer end()

	if err := g.wait(ctx); err != nil {
		return OutcomeError, err
	}
	err := g.client.Get(ctx, key, obj)
	switch Classify(err) {
	case ClassOK:
		return OutcomeOK, nil
	case ClassNotFound:
		return OutcomeNotFound, nil
	default:
		return OutcomeError, err
	}
}

// Create writes a new object. AlreadyExists maps to OutcomeConflict.
func (g *Gateway) Create(ctx context.Context, obj client.Object) (Outcome, error) {
	ctx, end := g.startSpan(ctx, "create", obj, obj.GetNamespace(), obj.GetName())
	defer end()

	if err := g.wait(ctx); err != nil {
		return OutcomeError, err
	}
	err := g.client.Create(ctx, obj)
	switch Classify(err) {
	case ClassOK:
		return OutcomeOK, nil
	case ClassConflict:
		return OutcomeConflict, nil
	default:
		return OutcomeError, err
	}
}

// Replace updates the object in place. NotFound maps to OutcomeNotFound so the
// caller can fall back to a full create.
func (g *Gateway) Replace(ctx context.Context, obj client.Object) (Outcome, error) {
	ctx, end := g.startSpan(ctx, "replace", obj, obj.GetNamespace(), obj.GetName())
	defer end()

	if err := g.wait(ctx); err != nil {
		return OutcomeError, err
	}
	err := g.client.Update(ctx, obj)
	switch Classify(err) {
	case ClassOK:
		return OutcomeOK, nil
	case ClassNotFound:
		return OutcomeNotFound, nil
	default:
		return OutcomeError, err
	}
}

// Delete removes the object. NotFound maps to OutcomeNotFound.
func (g *Gateway) Delete(ctx context.Context, obj client.Object) (Outcome, error) {
	ctx, end := g.startSpan(ctx, "delete", obj, obj.GetNamespace(), obj.GetName())
	defer end()

	if err := g.wait(ctx); err != nil {
		return OutcomeError, err
	}
	err := g.client.Delete(ctx, obj)
	switch Classify(err) {
	case ClassOK:
		return OutcomeOK, nil
	case ClassNotFound:
		return OutcomeNotFound, nil
	default:
		return OutcomeError, err
	}
}

// CreateOrReplace writes the object, replacing it when it already exists.
// Used for the kubeconfig ConfigMap which is re-issued on every reconcile.
func (g *Gateway) CreateOrReplace(ctx context.Context, obj client.Object, existing client.Object) (Outcome, error) {
	outcome, err := g.Get(ctx, client.ObjectKeyFromObject(obj), existing)
	switch outcome {
	case OutcomeNotFound:
		return g.Create(ctx, obj)
	case OutcomeOK:
		obj.SetResourceVersion(existing.GetResourceVersion())
		return g.Replace(ctx, obj)
	default:
		return outcome, err
	}
}

func (g *Gateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (g *Gateway) startSpan(ctx context.Context, op string, obj client.Object, namespace, name string) (context.Context, func()) {
	kind := fmt.Sprintf("%T", obj)
	if gvk, err := g.client.GroupVersionKindFor(obj); err == nil {
		kind = gvk.Kind
	}
	ctx, span := g.tracer.Start(ctx, "gateway."+op,
		trace.WithAttributes(
			attribute.String("object.kind", kind),
			attribute.String("object.namespace", namespace),
			attribute.String("object.name", name),
		))
	return ctx, func() { span.End() }
}
