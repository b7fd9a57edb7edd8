package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/config"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/repository"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/runner"
	"golang.org/x/time/rate"
)

const tokenCookieName = "__relief_allocator_token"

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	runner      *runner.Runner
	mailer      runner.MailPublisher
	runLimiter  *rate.Limiter
	metricsPage http.Handler

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, rn *runner.Runner, mailer runner.MailPublisher, gatherer prometheus.Gatherer) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		runner:      rn,
		mailer:      mailer,
		runLimiter:  newRunLimiter(cfg),
		metricsPage: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),

		Mux: chi.NewRouter(),
	}, nil
}

// 配置中的速率以每分钟为单位
func newRunLimiter(cfg *config.Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.Run.RatePerMinute/60), cfg.Run.Burst)
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Method(http.MethodGet, "/metrics", h.metricsPage)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	coordinatorOnly := h.RequiredRole([]domain.Role{domain.RoleCoordinator})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(coordinatorOnly).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(coordinatorOnly).Patch("/", h.UpdateUser)
				r.With(coordinatorOnly).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.With(coordinatorOnly).Post("/", h.CreateScenario)
			r.Get("/", h.GetAllScenarios)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scenario)
				r.Get("/", h.GetScenario)
				r.With(coordinatorOnly).Patch("/", h.UpdateScenario)
				r.With(coordinatorOnly).Delete("/", h.DeleteScenario)
				r.With(coordinatorOnly).With(h.runLimit).Post("/runs", h.StartRun)
				r.Post("/baseline", h.ComputeBaseline) // 基线分配不修改任何数据，观察员也可以调用
			})
		})

		r.Get("/runs/{id}", h.GetRun)
	})
}
