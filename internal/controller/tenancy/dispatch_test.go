// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package tenancy

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
)

func TestDispatchRouting(t *testing.T) {
	g := NewWithT(t)

	table := NewDispatchTable()
	var invoked []string
	for _, ev := range []EventType{EventCreate, EventUpdate, EventDelete} {
		ev := ev
		table.Register(KindTeam, ev, func(_ context.Context, _ client.Object) (ctrl.Result, error) {
			invoked = append(invoked, string(ev))
			return ctrl.Result{}, nil
		})
	}

	team := &tenancyv1alpha1.Team{}
	for _, ev := range []EventType{EventCreate, EventUpdate, EventDelete} {
		_, err := table.Dispatch(context.Background(), KindTeam, ev, team)
		g.Expect(err).NotTo(HaveOccurred())
	}
	g.Expect(invoked).To(Equal([]string{"create", "update", "delete"}))
}

func TestDispatchMissingHandler(t *testing.T) {
	g := NewWithT(t)

	table := NewDispatchTable()
	_, err := table.Dispatch(context.Background(), KindUser, EventCreate, &tenancyv1alpha1.User{})
	g.Expect(err).To(MatchError(ContainSubstring("no handler registered")))
}

func TestClassifyEvent(t *testing.T) {
	g := NewWithT(t)

	team := &tenancyv1alpha1.Team{}
	g.Expect(ClassifyEvent(team, false)).To(Equal(EventCreate))
	g.Expect(ClassifyEvent(team, true)).To(Equal(EventUpdate))

	now := metav1.Now()
	team.DeletionTimestamp = &now
	g.Expect(ClassifyEvent(team, true)).To(Equal(EventDelete))
	g.Expect(ClassifyEvent(team, false)).To(Equal(EventDelete))
}
