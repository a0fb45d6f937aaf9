// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"net/http"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/pkg/materialize"
)

// userRequest is the mutable surface of a User exposed to the UI.
type userRequest struct {
	Name     string                   `json:"name,omitempty"`
	FullName string                   `json:"fullName,omitempty"`
	Email    string                   `json:"email,omitempty"`
	Role     tenancyv1alpha1.UserRole `json:"role,omitempty"`
	Teams    []string                 `json:"teams,omitempty"`
}

type userResponse struct {
	Name     string                     `json:"name"`
	FullName string                     `json:"fullName,omitempty"`
	Email    string                     `json:"email,omitempty"`
	Role     tenancyv1alpha1.UserRole   `json:"role,omitempty"`
	Teams    []string                   `json:"teams,omitempty"`
	Status   tenancyv1alpha1.UserStatus `json:"status,omitempty"`
}

func toUserResponse(user *tenancyv1alpha1.User) userResponse {
	return userResponse{
		Name:     user.Name,
		FullName: user.Spec.FullName,
		Email:    user.Spec.Email,
		Role:     user.Spec.Role,
		Teams:    user.Spec.Teams,
		Status:   user.Status,
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, req *http.Request) {
	var users tenancyv1alpha1.UserList
	if err := s.client.List(req.Context(), &users); err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users.Items))
	for i := range users.Items {
		out = append(out, toUserResponse(&users.Items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, req *http.Request) {
	var body userRequest
	if err := decodeBody(req, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if body.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user name is required"})
		return
	}

	user := &tenancyv1alpha1.User{
		ObjectMeta: metav1.ObjectMeta{Name: body.Name},
		Spec: tenancyv1alpha1.UserSpec{
			FullName: body.FullName,
			Email:    body.Email,
			Role:     body.Role,
			Teams:    body.Teams,
		},
	}
	if err := s.client.Create(req.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, req *http.Request) {
	user := &tenancyv1alpha1.User{}
	if err := s.client.Get(req.Context(), client.ObjectKey{Name: req.PathValue("name")}, user); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, req *http.Request) {
	var body userRequest
	if err := decodeBody(req, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	user := &tenancyv1alpha1.User{}
	if err := s.client.Get(req.Context(), client.ObjectKey{Name: req.PathValue("name")}, user); err != nil {
		s.writeError(w, err)
		return
	}
	user.Spec.FullName = body.FullName
	user.Spec.Email = body.Email
	user.Spec.Role = body.Role
	user.Spec.Teams = body.Teams
	if err := s.client.Update(req.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, req *http.Request) {
	user := &tenancyv1alpha1.User{ObjectMeta: metav1.ObjectMeta{Name: req.PathValue("name")}}
	if err := s.client.Delete(req.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDownloadKubeconfig serves the rendered kubeconfig bundle as a file
// attachment and stamps the request time onto the User record.
func (s *Server) handleDownloadKubeconfig(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")

	user := &tenancyv1alpha1.User{}
	if err := s.client.Get(req.Context(), client.ObjectKey{Name: name}, user); err != nil {
		s.writeError(w, err)
		return
	}

	var cm corev1.ConfigMap
	key := client.ObjectKey{Name: materialize.KubeconfigName(name), Namespace: materialize.UsersNamespaceName}
	if err := s.client.Get(req.Context(), key, &cm); err != nil {
		if apierrors.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("kubeconfig for user %s not issued yet", name)})
			return
		}
		s.writeError(w, err)
		return
	}

	// best effort, the download must not fail on a stamp collision
	patch := client.MergeFrom(user.DeepCopy())
	if user.Annotations == nil {
		user.Annotations = map[string]string{}
	}
	user.Annotations[tenancyv1alpha1.AnnotationKeyLastKubeconfigRequest] = time.Now().UTC().Format(time.RFC3339)
	if err := s.client.Patch(req.Context(), user, patch); err != nil {
		s.log.Error(err, "Failed to stamp kubeconfig request time", "user", name)
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-kubeconfig.yaml", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cm.Data["kubeconfig"]))
}
