// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/pkg/rbacpolicy"
)

// UsersNamespaceName is the shared identity namespace holding every user's
// ServiceAccount, token Secret and kubeconfig ConfigMap.
const UsersNamespaceName = "users"

// TokenSecretName returns the token Secret name of a user.
func TokenSecretName(user string) string {
	return fmt.Sprintf("%s-token", user)
}

// KubeconfigName returns the kubeconfig ConfigMap name of a user.
func KubeconfigName(user string) string {
	return fmt.Sprintf("%s-kubeconfig", user)
}

// EmailSafe folds an email address into a label-safe value:
// "@" becomes "-at-" and "." becomes "-dot-".
func EmailSafe(email string) string {
	return strings.NewReplacer("@", "-at-", ".", "-dot-").Replace(email)
}

// UsersNamespace builds the shared identity namespace.
func UsersNamespace() *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: UsersNamespaceName,
			Labels: map[string]string{
				tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue,
				tenancyv1alpha1.LabelKeyPurpose:   tenancyv1alpha1.PurposeUserAccounts,
			},
		},
	}
}

// ServiceAccount builds the identity ServiceAccount of a user. The role label
// carries the normalized role, the same one the bindings grant.
func ServiceAccount(user *tenancyv1alpha1.User) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      user.Name,
			Namespace: UsersNamespaceName,
			Labels: map[string]string{
				tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue,
				tenancyv1alpha1.LabelKeyUser:      user.Name,
				tenancyv1alpha1.LabelKeyUserEmail: EmailSafe(user.Spec.Email),
				tenancyv1alpha1.LabelKeyUserRole:  string(rbacpolicy.Normalize(user.Spec.Role)),
			},
			Annotations: map[string]string{
				tenancyv1alpha1.AnnotationKeyFullName: user.Spec.FullName,
				tenancyv1alpha1.AnnotationKeyEmail:    user.Spec.Email,
			},
		},
		AutomountServiceAccountToken: ptr.To(false),
	}
}

// TokenSecret builds the long-lived service-account token Secret of a user.
// The control plane populates the token data once the annotation binds the
// Secret to the ServiceAccount.
func TokenSecret(userName string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      TokenSecretName(userName),
			Namespace: UsersNamespaceName,
			Labels: map[string]string{
				tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue,
				tenancyv1alpha1.LabelKeyUser:      userName,
			},
			Annotations: map[string]string{
				tenancyv1alpha1.AnnotationKeyServiceAccountName: userName,
			},
		},
		Type: corev1.SecretTypeServiceAccountToken,
	}
}

// KubeconfigConfigMap builds the ConfigMap carrying the rendered kubeconfig
// of a user under the "kubeconfig" key.
func KubeconfigConfigMap(userName string, kubeconfig []byte) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      KubeconfigName(userName),
			Namespace: UsersNamespaceName,
			Labels: map[string]string{
				tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue,
				tenancyv1alpha1.LabelKeyUser:      userName,
			},
		},
		Data: map[string]string{
			"kubeconfig": string(kubeconfig),
		},
	}
}
