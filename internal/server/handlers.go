package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/content-strategist/internal/config"
	"github.com/jonathan/content-strategist/internal/types"
)

// applyRequestDefaults fills empty request fields from the configured
// defaults, so a minimal request body still drives a full run.
func applyRequestDefaults(req *types.GenerateRequest, cfg *config.Config) {
	if req.PPTPath == "" {
		req.PPTPath = cfg.PPTPath
	}
	if req.URL == "" {
		req.URL = cfg.DefaultURL
	}
	if req.BrandName == "" {
		req.BrandName = cfg.DefaultBrand
	}
	if req.VideoOutlinePath == "" {
		req.VideoOutlinePath = cfg.OutlinePath
	}
	if req.AdditionalInfo == "" {
		req.AdditionalInfo = cfg.AdditionalInfo
	}
}

// handleGenerate runs the full pipeline for one request. Persistence
// failures are not HTTP errors: the run already produced its strategy and
// script, so the response carries status "error" with the failure message.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	applyRequestDefaults(&req, s.cfg)

	result, err := s.pipeline.Run(r.Context(), &req)
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, types.GenerateResponse{
		Status:             result.Status,
		SpreadsheetURL:     result.SpreadsheetURL,
		Message:            result.Message,
		StyleTypeUsed:      result.StyleTypeUsed,
		FinalDirectionUsed: result.FinalDirectionUsed,
		DirectionPlan:      result.DirectionPlan,
		ResourceType:       result.ResourceType,
	})
}
