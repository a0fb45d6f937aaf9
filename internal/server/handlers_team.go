// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/pkg/materialize"
	"github.com/telekom/tenancy-operator/pkg/quota"
)

// teamRequest is the mutable surface of a Team exposed to the UI.
type teamRequest struct {
	Name         string                       `json:"name,omitempty"`
	Description  string                       `json:"description,omitempty"`
	Environments []tenancyv1alpha1.Environment `json:"environments,omitempty"`
}

type teamResponse struct {
	Name         string                        `json:"name"`
	Description  string                        `json:"description,omitempty"`
	Environments []tenancyv1alpha1.Environment `json:"environments,omitempty"`
	Status       tenancyv1alpha1.TeamStatus    `json:"status,omitempty"`
}

func toTeamResponse(team *tenancyv1alpha1.Team) teamResponse {
	return teamResponse{
		Name:         team.Name,
		Description:  team.Spec.Description,
		Environments: team.Spec.Environments,
		Status:       team.Status,
	}
}

// statsResponse is the dashboard summary.
type statsResponse struct {
	Teams        int            `json:"teams"`
	Users        int            `json:"users"`
	Environments int            `json:"environments"`
	UsersByRole  map[string]int `json:"usersByRole"`
}

func (s *Server) handleStats(w http.ResponseWriter, req *http.Request) {
	var teams tenancyv1alpha1.TeamList
	if err := s.client.List(req.Context(), &teams); err != nil {
		s.writeError(w, err)
		return
	}
	var users tenancyv1alpha1.UserList
	if err := s.client.List(req.Context(), &users); err != nil {
		s.writeError(w, err)
		return
	}

	stats := statsResponse{
		Teams:       len(teams.Items),
		Users:       len(users.Items),
		UsersByRole: map[string]int{"admin": 0, "developer": 0, "viewer": 0},
	}
	for _, team := range teams.Items {
		stats.Environments += len(team.Status.Namespaces)
	}
	for _, user := range users.Items {
		role := user.Spec.Role
		if role == "" {
			role = tenancyv1alpha1.UserRoleDeveloper
		}
		stats.UsersByRole[string(role)]++
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListTeams(w http.ResponseWriter, req *http.Request) {
	var teams tenancyv1alpha1.TeamList
	if err := s.client.List(req.Context(), &teams); err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]teamResponse, 0, len(teams.Items))
	for i := range teams.Items {
		out = append(out, toTeamResponse(&teams.Items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, req *http.Request) {
	var body teamRequest
	if err := decodeBody(req, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if body.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "team name is required"})
		return
	}

	team := &tenancyv1alpha1.Team{
		ObjectMeta: metav1.ObjectMeta{Name: body.Name},
		Spec: tenancyv1alpha1.TeamSpec{
			Description:  body.Description,
			Environments: body.Environments,
		},
	}
	if err := s.client.Create(req.Context(), team); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamResponse(team))
}

func (s *Server) handleGetTeam(w http.ResponseWriter, req *http.Request) {
	team := &tenancyv1alpha1.Team{}
	if err := s.client.Get(req.Context(), client.ObjectKey{Name: req.PathValue("name")}, team); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, req *http.Request) {
	var body teamRequest
	if err := decodeBody(req, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	team := &tenancyv1alpha1.Team{}
	if err := s.client.Get(req.Context(), client.ObjectKey{Name: req.PathValue("name")}, team); err != nil {
		s.writeError(w, err)
		return
	}
	team.Spec.Description = body.Description
	team.Spec.Environments = body.Environments
	if err := s.client.Update(req.Context(), team); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, req *http.Request) {
	team := &tenancyv1alpha1.Team{ObjectMeta: metav1.ObjectMeta{Name: req.PathValue("name")}}
	if err := s.client.Delete(req.Context(), team); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTeamQuota reports the quota consumption of every provisioned
// environment namespace of a team.
func (s *Server) handleTeamQuota(w http.ResponseWriter, req *http.Request) {
	team := &tenancyv1alpha1.Team{}
	if err := s.client.Get(req.Context(), client.ObjectKey{Name: req.PathValue("name")}, team); err != nil {
		s.writeError(w, err)
		return
	}

	usage := make(map[string]quota.Summary, len(team.Status.Namespaces))
	for _, ns := range team.Status.Namespaces {
		var rq corev1.ResourceQuota
		key := client.ObjectKey{Name: materialize.QuotaName(ns.Name), Namespace: ns.Name}
		if err := s.client.Get(req.Context(), key, &rq); err != nil {
			// a namespace without its quota yet simply reports zero usage
			usage[ns.Name] = quota.Summary{}
			continue
		}
		usage[ns.Name] = quota.Summarize(rq.Status)
	}
	writeJSON(w, http.StatusOK, usage)
}
