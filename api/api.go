package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gouniverse/masterblog"
	"github.com/samber/lo"
)

type API struct {
	store masterblog.StoreInterface
}

func NewAPI(store masterblog.StoreInterface) *API {
	if store == nil {
		panic("api.NewAPI: store is nil")
	}
	return &API{store: store}
}

// Handler returns the full HTTP surface: the post routes wrapped with the
// request logging, CORS and gzip middleware.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/posts", a.handlePostList)
	mux.HandleFunc("POST /api/posts", a.handlePostCreate)
	mux.HandleFunc("PUT /api/posts/{id}", a.handlePostUpdate)
	mux.HandleFunc("DELETE /api/posts/{id}", a.handlePostDelete)
	mux.HandleFunc("GET /api/posts/search", a.handlePostSearch)

	return withMiddleware(mux)
}

// postResponse is the wire shape of a post: {"id", "title", "content"}.
// Internal columns (timestamps) are not exposed.
type postResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// createRequest requires both fields; absence is detected structurally.
type createRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// updateRequest fields are optional; an omitted field keeps its prior value.
type updateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func postToResponse(post *masterblog.Post) postResponse {
	return postResponse{
		ID:      post.IDInt(),
		Title:   post.Title(),
		Content: post.Content(),
	}
}

func postsToResponse(posts []masterblog.Post) []postResponse {
	return lo.Map(posts, func(post masterblog.Post, index int) postResponse {
		return postToResponse(&post)
	})
}

// handlePostList returns all posts, optionally sorted.
// Query parameters: sort (title or content), direction (asc or desc).
// Without a sort parameter posts come back in insertion order.
func (a *API) handlePostList(w http.ResponseWriter, r *http.Request) {
	sortField := r.URL.Query().Get("sort")
	direction := r.URL.Query().Get("direction")

	if sortField != "" &&
		sortField != masterblog.SORT_FIELD_TITLE &&
		sortField != masterblog.SORT_FIELD_CONTENT {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: `Invalid sort field. Must be "title" or "content".`,
		})
		return
	}

	if direction != "" &&
		direction != masterblog.SORT_DIRECTION_ASC &&
		direction != masterblog.SORT_DIRECTION_DESC {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: `Invalid direction. Must be "asc" or "desc".`,
		})
		return
	}

	options := masterblog.PostQueryOptions{}

	if sortField != "" {
		options.OrderBy = sortField
		options.SortOrder = direction
	}

	posts, err := a.store.PostList(r.Context(), options)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, postsToResponse(posts))
}

// handlePostCreate adds a new post. Both title and content are required.
func (a *API) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing title or content"})
		return
	}

	if req.Title == nil || req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing title or content"})
		return
	}

	post := masterblog.NewPost().
		SetTitle(*req.Title).
		SetContent(*req.Content)

	if err := a.store.PostCreate(r.Context(), post); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, postToResponse(post))
}

// handlePostUpdate overwrites the provided fields of the matched post.
// The id cannot be changed.
func (a *API) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPostOr404(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	if req.Title != nil {
		post.SetTitle(*req.Title)
	}

	if req.Content != nil {
		post.SetContent(*req.Content)
	}

	if err := a.store.PostUpdate(r.Context(), post); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, postToResponse(post))
}

// handlePostDelete removes the matched post permanently.
func (a *API) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPostOr404(w, r)
	if !ok {
		return
	}

	if err := a.store.PostDeleteByID(r.Context(), post.ID()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Post with id %d has been deleted successfully.", post.IDInt()),
	})
}

// handlePostSearch returns the posts matching the title or content substring
// queries, case-insensitively, in insertion order. With both queries empty the
// result is empty.
func (a *API) handlePostSearch(w http.ResponseWriter, r *http.Request) {
	titleQuery := r.URL.Query().Get("title")
	contentQuery := r.URL.Query().Get("content")

	posts, err := a.store.PostSearch(r.Context(), titleQuery, contentQuery)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, postsToResponse(posts))
}

// findPostOr404 resolves the {id} path parameter to a post. A non-numeric id
// or an id without a post writes the not-found error and returns false.
func (a *API) findPostOr404(w http.ResponseWriter, r *http.Request) (*masterblog.Post, bool) {
	idParam := r.PathValue("id")

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("Post with id %s not found.", idParam),
		})
		return nil, false
	}

	post, err := a.store.PostFindByID(r.Context(), idParam)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}

	if post == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("Post with id %d not found.", id),
		})
		return nil, false
	}

	return post, true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
