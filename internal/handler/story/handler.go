package story

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	storysvc "github.com/zhouzirui/z-fairytale/backend/internal/service/story"
)

// maxFormBytes bounds a submitted form body.
const maxFormBytes = 64 << 10

// StoryService 抽象故事业务，便于测试与替换实现
type StoryService interface {
	Submit(ctx context.Context, form storymodel.Form) (storymodel.Request, error)
	FetchLatest(ctx context.Context) (storysvc.Latest, error)
	ConnectionError() error
	Books() *book.Index
	Config() storysvc.Config
}

// Handler 故事表单的HTTP处理器
type Handler struct {
	svc    StoryService
	logger *zap.Logger
}

// New 创建故事处理器
func New(svc StoryService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes 注册HTML页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/stories/new", http.StatusFound)
	})
	r.Get("/stories/new", h.handleNewStory)
	r.Post("/stories", h.handleSubmitStory)
	r.Get("/stories/latest", h.handleReadStories)
	r.Post("/stories/latest", h.handleLoadLatest)
}

// handleNewStory 渲染空白表单
func (h *Handler) handleNewStory(w http.ResponseWriter, r *http.Request) {
	h.render(w, "create", h.newCreateView(storymodel.Form{}, nil))
}

// handleSubmitStory 提交表单并带着原值重新渲染
func (h *Handler) handleSubmitStory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	form := formFromRequest(r)
	_, err := h.svc.Submit(r.Context(), form)
	notice := submitNotice(err)

	h.render(w, "create", h.newCreateView(form, &notice))
}

// handleReadStories 渲染读取页，不触发远程读取
func (h *Handler) handleReadStories(w http.ResponseWriter, r *http.Request) {
	h.render(w, "read", readView{Page: "read", Banner: connectionBanner(h.svc.ConnectionError())})
}

// handleLoadLatest 读取输出表的最新一行
func (h *Handler) handleLoadLatest(w http.ResponseWriter, r *http.Request) {
	view := readView{Page: "read", Banner: connectionBanner(h.svc.ConnectionError())}

	latest, err := h.svc.FetchLatest(r.Context())
	if err != nil {
		notice := fetchErrorNotice(err, h.svc.Config().OutputTable)
		view.Notice = &notice
		h.render(w, "read", view)
		return
	}

	notice := latestNotice(latest.Kind)
	view.Notice = &notice
	switch latest.Kind {
	case storysvc.LatestStory:
		view.Story = latest.Story
		view.StoryHTML = fairytaleHTML(latest.Story.Fairytale)
	case storysvc.LatestRaw:
		view.Raw = latest.Table
	}
	h.render(w, "read", view)
}

func (h *Handler) newCreateView(form storymodel.Form, notice *Notice) createView {
	_, resolved := h.svc.Books().Lookup(form.InspirationLabel)
	return createView{
		Page:      "create",
		Banner:    connectionBanner(h.svc.ConnectionError()),
		Notice:    notice,
		Form:      form,
		Labels:    h.svc.Books().Labels(),
		Locations: storymodel.Locations,
		Languages: storymodel.Languages,
		Summary:   form.Summary(resolved),
	}
}

func formFromRequest(r *http.Request) storymodel.Form {
	return storymodel.Form{
		MainCharacter:    r.PostForm.Get("main_character"),
		Location:         r.PostForm.Get("location"),
		MainProblem:      r.PostForm.Get("main_problem"),
		InspirationLabel: r.PostForm.Get("inspiration"),
		TargetLanguage:   r.PostForm.Get("target_language"),
	}
}
