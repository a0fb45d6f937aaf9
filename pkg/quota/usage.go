// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package quota summarizes ResourceQuota status into the flat usage numbers
// the admin API reports per environment namespace.
package quota

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Usage is the per-resource used/hard pair with a percentage for display.
type Usage struct {
	Used    int64   `json:"used"`
	Hard    int64   `json:"hard"`
	Percent float64 `json:"percent"`
}

// Summary reports the consumption of an environment namespace. CPU values are
// whole cores (rounded up from millicores), memory values are Mi.
type Summary struct {
	CPU      Usage `json:"cpu"`
	Memory   Usage `json:"memory"`
	Pods     Usage `json:"pods"`
	Services Usage `json:"services"`
}

// Summarize flattens a ResourceQuota status into a Summary.
func Summarize(status corev1.ResourceQuotaStatus) Summary {
	return Summary{
		CPU:      usage(status, corev1.ResourceRequestsCPU, cores),
		Memory:   usage(status, corev1.ResourceRequestsMemory, mebibytes),
		Pods:     usage(status, corev1.ResourcePods, count),
		Services: usage(status, corev1.ResourceServices, count),
	}
}

func usage(status corev1.ResourceQuotaStatus, name corev1.ResourceName, convert func(resource.Quantity) int64) Usage {
	u := Usage{}
	if q, ok := status.Used[name]; ok {
		u.Used = convert(q)
	}
	if q, ok := status.Hard[name]; ok {
		u.Hard = convert(q)
	}
	if u.Hard > 0 {
		u.Percent = float64(u.Used) / float64(u.Hard) * 100
		if u.Percent > 100 {
			u.Percent = 100
		}
	}
	return u
}

func cores(q resource.Quantity) int64 {
	milli := q.MilliValue()
	return (milli + 999) / 1000
}

func mebibytes(q resource.Quantity) int64 {
	return q.Value() / (1 << 20)
}

func count(q resource.Quantity) int64 {
	return q.Value()
}
