/*
Copyright © 2026 Deutsche Telekom AG
*/
package indexer

import (
	"context"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
)

func TestIndexerConstants(t *testing.T) {
	if UserTeamsField != ".spec.teams" {
		t.Errorf("UserTeamsField = %q, want %q", UserTeamsField, ".spec.teams")
	}
}

func TestUserTeamsIndexFunc(t *testing.T) {
	tests := []struct {
		name       string
		object     client.Object
		wantValues []string
	}{
		{
			name: "user with multiple teams",
			object: &tenancyv1alpha1.User{
				ObjectMeta: metav1.ObjectMeta{Name: "alice"},
				Spec: tenancyv1alpha1.UserSpec{
					Teams: []string{"acme", "globex"},
				},
			},
			wantValues: []string{"acme", "globex"},
		},
		{
			name: "user with one team",
			object: &tenancyv1alpha1.User{
				ObjectMeta: metav1.ObjectMeta{Name: "bob"},
				Spec: tenancyv1alpha1.UserSpec{
					Teams: []string{"acme"},
				},
			},
			wantValues: []string{"acme"},
		},
		{
			name: "user without teams",
			object: &tenancyv1alpha1.User{
				ObjectMeta: metav1.ObjectMeta{Name: "carol"},
				Spec:       tenancyv1alpha1.UserSpec{},
			},
			wantValues: nil,
		},
		{
			name:       "wrong object type returns nil",
			object:     &tenancyv1alpha1.Team{ObjectMeta: metav1.ObjectMeta{Name: "acme"}},
			wantValues: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserTeamsIndexFunc(tt.object)
			if len(got) != len(tt.wantValues) {
				t.Fatalf("UserTeamsIndexFunc() = %v, want %v", got, tt.wantValues)
			}
			for i := range got {
				if got[i] != tt.wantValues[i] {
					t.Errorf("UserTeamsIndexFunc()[%d] = %q, want %q", i, got[i], tt.wantValues[i])
				}
			}
		})
	}
}

func TestIndexerWithFakeClient(t *testing.T) {
	scheme := runtime.NewScheme()
	if err := tenancyv1alpha1.AddToScheme(scheme); err != nil {
		t.Fatalf("failed to add scheme: %v", err)
	}

	alice := &tenancyv1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: "alice"},
		Spec:       tenancyv1alpha1.UserSpec{Teams: []string{"acme", "globex"}},
	}
	bob := &tenancyv1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: "bob"},
		Spec:       tenancyv1alpha1.UserSpec{Teams: []string{"acme"}},
	}
	carol := &tenancyv1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: "carol"},
		Spec:       tenancyv1alpha1.UserSpec{Teams: []string{"initech"}},
	}

	fakeClient := fake.NewClientBuilder().
		WithScheme(scheme).
		WithRuntimeObjects(alice, bob, carol).
		WithIndex(&tenancyv1alpha1.User{}, UserTeamsField, UserTeamsIndexFunc).
		Build()

	ctx := context.Background()

	var list tenancyv1alpha1.UserList
	err := fakeClient.List(ctx, &list, client.MatchingFields{UserTeamsField: "acme"})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(list.Items) != 2 {
		t.Errorf("expected 2 users in team acme, got %d", len(list.Items))
	}

	list = tenancyv1alpha1.UserList{}
	err = fakeClient.List(ctx, &list, client.MatchingFields{UserTeamsField: "initech"})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(list.Items) != 1 {
		t.Errorf("expected 1 user in team initech, got %d", len(list.Items))
	}

	list = tenancyv1alpha1.UserList{}
	err = fakeClient.List(ctx, &list, client.MatchingFields{UserTeamsField: "hooli"})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(list.Items) != 0 {
		t.Errorf("expected 0 users in team hooli, got %d", len(list.Items))
	}
}
