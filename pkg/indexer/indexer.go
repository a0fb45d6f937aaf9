/*
Copyright © 2026 Deutsche Telekom AG.
*/
package indexer

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
)

// UserTeamsField is the field index for User.Spec.Teams. A User appears under
// every team it is a member of.
const UserTeamsField = ".spec.teams"

// SetupIndexes registers field indexes on the manager's cache for efficient lookups.
// This should be called before starting the manager.
func SetupIndexes(ctx context.Context, mgr manager.Manager) error {
	// Index User by team membership so a Team change can requeue exactly the
	// member users instead of scanning all of them.
	if err := mgr.GetFieldIndexer().IndexField(
		ctx,
		&tenancyv1alpha1.User{},
		UserTeamsField,
		UserTeamsIndexFunc,
	); err != nil {
		return fmt.Errorf("failed to create index for User.Spec.Teams: %w", err)
	}

	return nil
}

// UserTeamsIndexFunc extracts the index values for the user-by-team field.
// Exported for testing and fake client setup.
func UserTeamsIndexFunc(obj client.Object) []string {
	user, ok := obj.(*tenancyv1alpha1.User)
	if !ok || len(user.Spec.Teams) == 0 {
		return nil
	}
	return user.Spec.Teams
}
