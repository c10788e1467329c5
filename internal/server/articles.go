package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type createRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Images    []string   `json:"images"`
	Files     []string   `json:"files"`
	PublishAt *time.Time `json:"publishAt"`
}

// updateRequest is a partial update. PublishAt stays raw so that an
// explicit null (clear the schedule) is distinguishable from absence.
type updateRequest struct {
	Title     *string         `json:"title"`
	Content   *string         `json:"content"`
	Images    *[]string       `json:"images"`
	Files     *[]string       `json:"files"`
	Published *bool           `json:"published"`
	PublishAt json.RawMessage `json:"publishAt"`
}

func (req *updateRequest) change() (model.Change, error) {
	change := model.Change{
		Title:     req.Title,
		Content:   req.Content,
		Images:    req.Images,
		Files:     req.Files,
		Published: req.Published,
	}
	if len(req.PublishAt) > 0 {
		change.SetPublishAt = true
		if !bytes.Equal(req.PublishAt, []byte("null")) {
			var at time.Time
			if err := json.Unmarshal(req.PublishAt, &at); err != nil {
				return model.Change{}, err
			}
			change.PublishAt = &at
		}
	}
	return change, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var filter store.ListFilter
	if v := r.URL.Query().Get("published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid published filter")
			return
		}
		filter.Published = &published
	}

	articles, err := s.store.List(r.Context(), filter, 0)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	s.respondJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	article, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, article)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, author string) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	article := model.NewArticle(author, req.Title, req.Content)
	if req.Images != nil {
		article.Images = req.Images
	}
	if req.Files != nil {
		article.Files = req.Files
	}
	article.PublishAt = req.PublishAt

	created, err := s.pub.Create(r.Context(), article)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, author string) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	change, err := req.change()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid publishAt")
		return
	}

	updated, err := s.pub.Update(r.Context(), id, author, change)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, author string) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	published, err := s.pub.PublishNow(r.Context(), id, author)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, published)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, author string) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	if err := s.pub.Delete(r.Context(), id, author); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Article deleted successfully"})
}

func (s *Server) articleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid article id")
		return uuid.Nil, false
	}
	return id, true
}
