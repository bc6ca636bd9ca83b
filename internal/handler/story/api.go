package story

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	storysvc "github.com/zhouzirui/z-fairytale/backend/internal/service/story"
	"github.com/zhouzirui/z-fairytale/backend/pkg/utils"
)

// RegisterAPIRoutes 注册JSON接口
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Post("/stories", h.handleCreateStory)
	r.Get("/stories/latest", h.handleGetLatest)
}

type submitResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Request storymodel.Request `json:"request"`
}

type latestResponse struct {
	storysvc.Latest
	Message string `json:"message"`
}

// handleCreateStory 提交故事参数
func (h *Handler) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	var form storymodel.Form
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&form); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.svc.Submit(r.Context(), form)
	if err != nil {
		notice := submitNotice(err)
		utils.RespondErrorHint(w, errorStatus(err), notice.Message, notice.Hint)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, submitResponse{
		Status:  "uploaded",
		Message: msgUploaded,
		Request: req,
	})
}

// handleGetLatest 返回最新生成的故事
func (h *Handler) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.FetchLatest(r.Context())
	if err != nil {
		notice := fetchErrorNotice(err, h.svc.Config().OutputTable)
		utils.RespondErrorHint(w, errorStatus(err), notice.Message, notice.Hint)
		return
	}

	utils.RespondJSON(w, http.StatusOK, latestResponse{
		Latest:  latest,
		Message: latestNotice(latest.Kind).Message,
	})
}

func errorStatus(err error) int {
	if errors.Is(err, storysvc.ErrConnectionUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
