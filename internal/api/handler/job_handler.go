package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/app/service"
	"github.com/2sn/starfit-server/internal/common"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBytes = 16 << 20
	maxFormMemory  = 8 << 20
)

type JobSubmitter interface {
	Submit(ctx context.Context, form jobconfig.Form) (*service.Page, error)
}

// JobHandler accepts the StarFit web form.
type JobHandler struct {
	jobService JobSubmitter
}

func NewJobHandler(js JobSubmitter) *JobHandler {
	return &JobHandler{jobService: js}
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

func (h *JobHandler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	form, err := readForm(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form: "+err.Error())
		return
	}

	page, err := h.jobService.Submit(r.Context(), form)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	if page.JobID != "" {
		w.Header().Set("X-Job-ID", page.JobID)
	}
	common.RespondWithHTML(w, page.Status, page.HTML)
}

// readForm collects the submitted values and the stardata upload. A stardata
// part without a file becomes an empty upload; no stardata part leaves Upload nil.
func readForm(r *http.Request) (jobconfig.Form, error) {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return jobconfig.Form{}, err
		}
		form := jobconfig.Form{Values: r.PostForm}
		if _, ok := r.PostForm[jobconfig.UploadField]; ok {
			form.Upload = &jobconfig.Upload{}
		}
		return form, nil
	}
	if err != nil {
		return jobconfig.Form{}, err
	}

	form := jobconfig.Form{Values: r.MultipartForm.Value}
	if files := r.MultipartForm.File[jobconfig.UploadField]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return jobconfig.Form{}, err
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return jobconfig.Form{}, err
		}
		form.Upload = &jobconfig.Upload{Filename: files[0].Filename, Content: content}
	} else if _, ok := r.MultipartForm.Value[jobconfig.UploadField]; ok {
		form.Upload = &jobconfig.Upload{}
	}
	return form, nil
}
