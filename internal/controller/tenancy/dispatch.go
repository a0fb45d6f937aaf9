// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package tenancy

import (
	"context"
	"fmt"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// EventType is the derived lifecycle phase a reconcile request is handled as.
type EventType string

const (
	EventCreate EventType = "create"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// ResourceKind names the custom resource a handler is registered for.
type ResourceKind string

const (
	KindTeam ResourceKind = "Team"
	KindUser ResourceKind = "User"
)

// Handler processes one lifecycle event for one object.
type Handler func(ctx context.Context, obj client.Object) (ctrl.Result, error)

type dispatchKey struct {
	kind  ResourceKind
	event EventType
}

// DispatchTable routes (kind, event) pairs to their registered handler. Every
// handler registration is explicit so the full routing surface is visible in
// the reconciler constructor.
type DispatchTable struct {
	handlers map[dispatchKey]Handler
}

// NewDispatchTable returns an empty table.
func NewDispatchTable() *DispatchTable {
	return &DispatchTable{handlers: make(map[dispatchKey]Handler)}
}

// Register binds a handler to a (kind, event) pair, replacing any previous one.
func (t *DispatchTable) Register(kind ResourceKind, event EventType, h Handler) {
	t.handlers[dispatchKey{kind: kind, event: event}] = h
}

// Dispatch invokes the handler for the pair. A missing registration is a
// programming error and aborts the reconcile.
func (t *DispatchTable) Dispatch(ctx context.Context, kind ResourceKind, event EventType, obj client.Object) (ctrl.Result, error) {
	h, ok := t.handlers[dispatchKey{kind: kind, event: event}]
	if !ok {
		return ctrl.Result{}, fmt.Errorf("no handler registered for %s/%s", kind, event)
	}
	return h(ctx, obj)
}

// ClassifyEvent derives the lifecycle phase of a reconcile request: a set
// deletion timestamp means delete, an object never provisioned means create,
// anything else is an update.
func ClassifyEvent(obj client.Object, provisioned bool) EventType {
	if !obj.GetDeletionTimestamp().IsZero() {
		return EventDelete
	}
	if !provisioned {
		return EventCreate
	}
	return EventUpdate
}
