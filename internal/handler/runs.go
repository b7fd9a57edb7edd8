package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/allocator"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/config"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/progress"
)

// 没有给出的字段使用配置中的默认值，取值范围由 allocator.New 检查
type runRequest struct {
	PopulationSize  *int     `json:"populationSize"`
	GenerationCount *int     `json:"generationCount"`
	MutationRate    *float64 `json:"mutationRate"`
	EliteCount      *int     `json:"eliteCount"`
	Seed            *uint64  `json:"seed"`
	NotifyEmail     string   `json:"notifyEmail" validate:"omitempty,email"`
}

func buildParameters(cfg *config.Config, req *runRequest) *allocator.Parameters {
	parameters := &allocator.Parameters{
		PopulationSize:  cfg.Allocator.PopulationSize,
		GenerationCount: cfg.Allocator.GenerationCount,
		MutationRate:    cfg.Allocator.MutationRate,
		EliteCount:      cfg.Allocator.EliteCount,
		Seed:            req.Seed,
	}

	if req.PopulationSize != nil {
		parameters.PopulationSize = *req.PopulationSize
	}
	if req.GenerationCount != nil {
		parameters.GenerationCount = *req.GenerationCount
	}
	if req.MutationRate != nil {
		parameters.MutationRate = *req.MutationRate
	}
	if req.EliteCount != nil {
		parameters.EliteCount = *req.EliteCount
	}

	return parameters
}

func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sc := r.Context().Value(ScenarioCtx).(*domain.Scenario)

	snapshot, err := h.runner.Start(r.Context(), sc, buildParameters(h.config, &req), req.NotifyEmail)
	if err != nil {
		var cfgErr *allocator.ConfigError
		switch {
		case errors.As(err, &cfgErr):
			h.errorResponse(w, r, cfgErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "运行已开始", snapshot)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.runner.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, progress.ErrRunNotFound):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取运行状态成功", snapshot)
}

func (h *Handler) ComputeBaseline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode" validate:"required,oneof=greedy proportional"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sc := r.Context().Value(ScenarioCtx).(*domain.Scenario)

	ch, err := allocator.Baseline(allocator.BaselineMode(req.Mode), sc.Sites, sc.Pool)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	score := allocator.Evaluate(ch, sc.Sites, sc.Pool)
	h.successResponse(w, r, "计算基线分配成功", allocator.BuildResult(ch, score, nil, sc.Sites))
}
