// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package gateway_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/telekom/tenancy-operator/pkg/gateway"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		t.Fatalf("building scheme: %v", err)
	}
	return scheme
}

func TestGetNotFound(t *testing.T) {
	g := NewWithT(t)
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	gw := gateway.New(c)

	var ns corev1.Namespace
	outcome, err := gw.Get(context.Background(), client.ObjectKey{Name: "absent"}, &ns)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeNotFound))
}

func TestCreateThenConflict(t *testing.T) {
	g := NewWithT(t)
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	gw := gateway.New(c)

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "acme-dev"}}
	outcome, err := gw.Create(context.Background(), ns)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeOK))

	outcome, err = gw.Create(context.Background(), &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "acme-dev"}})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeConflict))
}

func TestReplaceAbsent(t *testing.T) {
	g := NewWithT(t)
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	gw := gateway.New(c)

	outcome, err := gw.Replace(context.Background(), &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "absent"}})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeNotFound))
}

func TestDeleteIdempotent(t *testing.T) {
	g := NewWithT(t)
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).
		WithObjects(&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "acme-dev"}}).
		Build()
	gw := gateway.New(c)

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "acme-dev"}}
	outcome, err := gw.Delete(context.Background(), ns)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeOK))

	outcome, err = gw.Delete(context.Background(), ns)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeNotFound))
}

func TestCreateOrReplace(t *testing.T) {
	g := NewWithT(t)
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	gw := gateway.New(c)

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "alice-kubeconfig", Namespace: "users"},
		Data:       map[string]string{"kubeconfig": "v1"},
	}
	outcome, err := gw.CreateOrReplace(context.Background(), cm, &corev1.ConfigMap{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeOK))

	updated := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "alice-kubeconfig", Namespace: "users"},
		Data:       map[string]string{"kubeconfig": "v2"},
	}
	outcome, err = gw.CreateOrReplace(context.Background(), updated, &corev1.ConfigMap{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcome).To(Equal(gateway.OutcomeOK))

	var got corev1.ConfigMap
	g.Expect(c.Get(context.Background(), client.ObjectKey{Name: "alice-kubeconfig", Namespace: "users"}, &got)).To(Succeed())
	g.Expect(got.Data).To(HaveKeyWithValue("kubeconfig", "v2"))
}

func TestTransientErrorSurfaced(t *testing.T) {
	g := NewWithT(t)
	unavailable := apierrors.NewServiceUnavailable("etcd down")
	c := fake.NewClientBuilder().WithScheme(newScheme(t)).
		WithInterceptorFuncs(interceptor.Funcs{
			Get: func(_ context.Context, _ client.WithWatch, _ client.ObjectKey, _ client.Object, _ ...client.GetOption) error {
				return unavailable
			},
		}).
		Build()
	gw := gateway.New(c)

	var ns corev1.Namespace
	outcome, err := gw.Get(context.Background(), client.ObjectKey{Name: "acme-dev"}, &ns)
	g.Expect(outcome).To(Equal(gateway.OutcomeError))
	g.Expect(errors.Is(err, unavailable) || err.Error() == unavailable.Error()).To(BeTrue())
	g.Expect(gateway.Classify(err)).To(Equal(gateway.ClassTransient))
}
