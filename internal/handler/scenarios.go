package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/utils"
)

type siteRequest struct {
	Name               string `json:"name" validate:"required"`
	RequiredVolunteers int    `json:"requiredVolunteers" validate:"gte=0"`
	RequiredTrucks     int    `json:"requiredTrucks" validate:"gte=0"`
	RequiredPackages   int    `json:"requiredPackages" validate:"gte=0"`
}

// 需求点的 code 由名称生成，请求中不需要给出
func toSites(reqs []siteRequest) []domain.Site {
	sites := make([]domain.Site, 0, len(reqs))
	for _, req := range reqs {
		sites = append(sites, domain.Site{
			Name:               req.Name,
			Code:               utils.GenerateSiteCode(req.Name),
			RequiredVolunteers: req.RequiredVolunteers,
			RequiredTrucks:     req.RequiredTrucks,
			RequiredPackages:   req.RequiredPackages,
		})
	}
	return sites
}

func (h *Handler) scenarioConflict(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "scenarios_name_key":
			h.badRequest(w, r, errors.New("场景名称已存在"))
		case "scenario_sites_scenario_id_name_key":
			h.badRequest(w, r, errors.New("需求点名称重复"))
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "场景已被修改，请刷新后重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string        `json:"name" validate:"required"`
		Description     string        `json:"description"`
		TotalVolunteers int           `json:"totalVolunteers" validate:"gte=0"`
		TotalTrucks     int           `json:"totalTrucks" validate:"gte=0"`
		TotalPackages   int           `json:"totalPackages" validate:"gte=0"`
		Sites           []siteRequest `json:"sites" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sc := &domain.Scenario{
		Name:        req.Name,
		Description: req.Description,
		Pool: domain.ResourcePool{
			TotalVolunteers: req.TotalVolunteers,
			TotalTrucks:     req.TotalTrucks,
			TotalPackages:   req.TotalPackages,
		},
		Sites: toSites(req.Sites),
	}
	if err := utils.ValidateScenario(sc); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateScenario(sc); err != nil {
		h.scenarioConflict(w, r, err)
		return
	}

	h.successResponse(w, r, "创建场景成功", sc)
}

func (h *Handler) GetAllScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.repository.GetAllScenarios()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取场景列表成功", scenarios)
}

func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc := r.Context().Value(ScenarioCtx).(*domain.Scenario)
	h.successResponse(w, r, "获取场景成功", sc)
}

func (h *Handler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            *string        `json:"name" validate:"omitempty,min=1"`
		Description     *string        `json:"description"`
		TotalVolunteers *int           `json:"totalVolunteers" validate:"omitempty,gte=0"`
		TotalTrucks     *int           `json:"totalTrucks" validate:"omitempty,gte=0"`
		TotalPackages   *int           `json:"totalPackages" validate:"omitempty,gte=0"`
		Sites           *[]siteRequest `json:"sites" validate:"omitempty,min=1,dive"`
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

	if req.Name != nil {
		sc.Name = *req.Name
	}
	if req.Description != nil {
		sc.Description = *req.Description
	}
	if req.TotalVolunteers != nil {
		sc.Pool.TotalVolunteers = *req.TotalVolunteers
	}
	if req.TotalTrucks != nil {
		sc.Pool.TotalTrucks = *req.TotalTrucks
	}
	if req.TotalPackages != nil {
		sc.Pool.TotalPackages = *req.TotalPackages
	}
	if req.Sites != nil {
		sc.Sites = toSites(*req.Sites)
	}

	if err := utils.ValidateScenario(sc); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateScenario(sc); err != nil {
		h.scenarioConflict(w, r, err)
		return
	}

	h.successResponse(w, r, "更新场景成功", sc)
}

func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	sc := r.Context().Value(ScenarioCtx).(*domain.Scenario)

	if err := h.repository.DeleteScenario(sc.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除场景成功", nil)
}
