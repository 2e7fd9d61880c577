package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/2sn/starfit-server/internal/api/middleware"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type JobLister interface {
	ListJobs(ctx context.Context, limit int) ([]*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	Depth(ctx context.Context) (int64, error)
}

// JobAdminHandler exposes job records to the operator.
type JobAdminHandler struct {
	queueService JobLister
}

func NewJobAdminHandler(qs JobLister) *JobAdminHandler {
	return &JobAdminHandler{queueService: qs}
}

func (h *JobAdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.OperatorOnly)
	r.Get("/", h.listJobs)
	r.Get("/{jobID}", h.getJob)
}

type jobListResponse struct {
	Jobs       []*model.Job `json:"jobs"`
	QueueDepth int64        `json:"queue_depth"`
}

func (h *JobAdminHandler) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	jobs, err := h.queueService.ListJobs(r.Context(), limit)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	depth, err := h.queueService.Depth(r.Context())
	if err != nil {
		common.RespondWithError(w, http.StatusServiceUnavailable, "Queue unavailable: "+err.Error())
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	common.RespondWithJSON(w, http.StatusOK, jobListResponse{Jobs: jobs, QueueDepth: depth})
}

func (h *JobAdminHandler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.queueService.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, job)
}
