package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/app"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.ReviewService
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)
	s.mux.Route("/reviews", func(r chi.Router) {
		r.Post("/", h.createReview)
		r.Get("/", h.listReviews)
		r.Get("/{id}", h.getReview)
		r.Put("/{id}", h.updateReview)
		r.Delete("/{id}", h.deleteReview)
	})
	s.mux.Get("/authors", h.listAuthors)
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Q.Ping(r.Context()); err != nil {
		log.Warn().Err(err).Msg("health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if errs := bindJSON(r, &req, createMessages); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	rv, err := h.C.Create(r.Context(), req.input())
	if err != nil {
		storeFailure(r, "create", 0, err)
		writeError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q, errs := bindListQuery(r.URL.Query())
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	out, err := h.Q.ListReviews(r.Context(), q.filter())
	if err != nil {
		storeFailure(r, "list", 0, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, errs := parseID(chi.URLParam(r, "id"))
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	rv, err := h.Q.GetReview(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Review not found")
		return
	case err != nil:
		storeFailure(r, "get", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch review")
		return
	}
	writeCacheable(w, r, rv)
}

// updateReview and deleteReview report a missing id as 500, not 404.
// Existing clients match on that status.
func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	id, errs := parseID(chi.URLParam(r, "id"))
	var req updateReviewRequest
	for _, fe := range bindJSON(r, &req, updateMessages) {
		errs.add(fe)
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	rv, err := h.C.Update(r.Context(), id, req.patch())
	if err != nil {
		storeFailure(r, "update", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, errs := parseID(chi.URLParam(r, "id"))
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	if err := h.C.Delete(r.Context(), id); err != nil {
		storeFailure(r, "delete", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listAuthors has no dedicated error body; failures use the fail envelope.
func (h *Handlers) listAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.Q.Authors(r.Context())
	if err != nil {
		storeFailure(r, "authors", 0, err)
		writeFail(w, err.Error())
		return
	}
	writeCacheable(w, r, authorsBody{Authors: authors})
}

func storeFailure(r *http.Request, op string, id int64, err error) {
	ev := log.Error().
		Err(err).
		Str("op", op).
		Str("kind", domain.KindOf(err).String()).
		Str("request_id", chimw.GetReqID(r.Context()))
	if id != 0 {
		ev = ev.Int64("id", id)
	}
	ev.Msg("review store call failed")
}
