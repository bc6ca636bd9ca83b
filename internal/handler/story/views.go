package story

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var (
	storyPolicyOnce sync.Once
	storyPolicy     *bluemonday.Policy
)

// fairytaleHTML sanitises generated text for display, keeping basic formatting and line breaks.
func fairytaleHTML(text string) template.HTML {
	storyPolicyOnce.Do(func() {
		storyPolicy = bluemonday.UGCPolicy()
	})
	withBreaks := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "<br>\n")
	return template.HTML(storyPolicy.Sanitize(withBreaks))
}

type createView struct {
	Page      string
	Banner    *Notice
	Notice    *Notice
	Form      storymodel.Form
	Labels    []string
	Locations []string
	Languages []string
	Summary   storymodel.Summary
}

type readView struct {
	Page      string
	Banner    *Notice
	Notice    *Notice
	Story     *storymodel.Generated
	StoryHTML template.HTML
	Raw       *table.Table
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
