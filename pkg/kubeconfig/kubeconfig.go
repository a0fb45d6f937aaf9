// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package kubeconfig renders a self-contained kubeconfig document for a user's
// service-account token against the cluster the operator itself talks to.
package kubeconfig

import (
	"errors"
	"fmt"

	"k8s.io/client-go/rest"
	clientcmdv1 "k8s.io/client-go/tools/clientcmd/api/v1"
	"sigs.k8s.io/yaml"
)

// ClusterName is the cluster entry name used in rendered kubeconfigs.
const ClusterName = "cluster"

// ErrEmptyToken is returned when the service-account token Secret has no
// token data yet. Callers treat it as a not-ready signal, not a failure.
var ErrEmptyToken = errors.New("service account token is empty")

// Render assembles a kubeconfig for the given user from the operator's own
// connection parameters and the user's token. When the connection carries no
// certificate authority data the cluster entry falls back to skipping TLS
// verification.
func Render(cfg *rest.Config, userName string, token []byte) ([]byte, error) {
	if len(token) == 0 {
		return nil, ErrEmptyToken
	}

	cluster := clientcmdv1.Cluster{Server: cfg.Host}
	if ca := caData(cfg); len(ca) > 0 {
		cluster.CertificateAuthorityData = ca
	} else {
		cluster.InsecureSkipTLSVerify = true
	}

	// the context is named after the user so `kubectl config use-context <user>` works
	doc := clientcmdv1.Config{
		APIVersion: "v1",
		Kind:       "Config",
		Clusters: []clientcmdv1.NamedCluster{
			{Name: ClusterName, Cluster: cluster},
		},
		AuthInfos: []clientcmdv1.NamedAuthInfo{
			{Name: userName, AuthInfo: clientcmdv1.AuthInfo{Token: string(token)}},
		},
		Contexts: []clientcmdv1.NamedContext{
			{Name: userName, Context: clientcmdv1.Context{Cluster: ClusterName, AuthInfo: userName}},
		},
		CurrentContext: userName,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling kubeconfig: %w", err)
	}
	return out, nil
}

func caData(cfg *rest.Config) []byte {
	if len(cfg.CAData) > 0 {
		return cfg.CAData
	}
	return nil
}
