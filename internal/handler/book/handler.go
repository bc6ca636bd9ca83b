package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	"github.com/zhouzirui/z-fairytale/backend/pkg/utils"
)

// Handler 书目服务的HTTP处理器
type Handler struct {
	books book.Store
	index *book.Index
}

// New 创建书目处理器
func New(books book.Store, index *book.Index) *Handler {
	return &Handler{books: books, index: index}
}

// labelsResponse is the selector option list.
type labelsResponse struct {
	Labels []string `json:"labels"`
	Count  int      `json:"count"`
}

// RegisterRoutes 注册书目相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/books", h.handleListLabels)
	r.Get("/books/catalog", h.handleListBooks)
	r.Get("/books/{bookID}", h.handleGetBook)
}

// handleListLabels 返回选择框使用的 "title (id)" 标签
func (h *Handler) handleListLabels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, labelsResponse{
		Labels: h.index.Labels(),
		Count:  h.index.Len(),
	})
}

// handleListBooks 列出所有书目
func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.books.List())
}

// handleGetBook 按ID查询书目
func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	b, ok := h.books.FindByID(chi.URLParam(r, "bookID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "book not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, b)
}
