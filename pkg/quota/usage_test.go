// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package quota_test

import (
	"testing"

	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/telekom/tenancy-operator/pkg/quota"
)

func TestSummarize(t *testing.T) {
	g := NewWithT(t)

	summary := quota.Summarize(corev1.ResourceQuotaStatus{
		Hard: corev1.ResourceList{
			corev1.ResourceRequestsCPU:    resource.MustParse("10"),
			corev1.ResourceRequestsMemory: resource.MustParse("20Gi"),
			corev1.ResourcePods:           resource.MustParse("20"),
			corev1.ResourceServices:       resource.MustParse("10"),
		},
		Used: corev1.ResourceList{
			corev1.ResourceRequestsCPU:    resource.MustParse("2500m"),
			corev1.ResourceRequestsMemory: resource.MustParse("512Mi"),
			corev1.ResourcePods:           resource.MustParse("5"),
		},
	})

	// 2500m rounds up to 3 cores
	g.Expect(summary.CPU).To(Equal(quota.Usage{Used: 3, Hard: 10, Percent: 30}))
	g.Expect(summary.Memory).To(Equal(quota.Usage{Used: 512, Hard: 20480, Percent: 2.5}))
	g.Expect(summary.Pods).To(Equal(quota.Usage{Used: 5, Hard: 20, Percent: 25}))
	g.Expect(summary.Services).To(Equal(quota.Usage{Used: 0, Hard: 10, Percent: 0}))
}

func TestSummarizePercentClamped(t *testing.T) {
	g := NewWithT(t)

	summary := quota.Summarize(corev1.ResourceQuotaStatus{
		Hard: corev1.ResourceList{corev1.ResourcePods: resource.MustParse("10")},
		Used: corev1.ResourceList{corev1.ResourcePods: resource.MustParse("15")},
	})

	g.Expect(summary.Pods.Percent).To(Equal(100.0))
}

func TestSummarizeEmptyStatus(t *testing.T) {
	g := NewWithT(t)

	summary := quota.Summarize(corev1.ResourceQuotaStatus{})
	g.Expect(summary.CPU).To(Equal(quota.Usage{}))
	g.Expect(summary.Memory.Percent).To(BeZero())
}
