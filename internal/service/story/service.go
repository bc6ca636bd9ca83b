package story

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
)

// TableStore abstracts the remote storage so the service can run against fakes.
type TableStore interface {
	WriteTable(ctx context.Context, tableID string, t *table.Table, incremental bool) error
	ReadTable(ctx context.Context, tableID string) (*table.Table, error)
}

// Config names the tables the service works with.
type Config struct {
	InputTable        string
	OutputTable       string
	LatestByTimestamp bool
}

// Service assembles story requests and reads back generated stories.
type Service struct {
	store   TableStore
	connErr error
	books   *book.Index
	cfg     Config
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the submission clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger 设置日志记录器
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConnectionError records why the store could not be created.
func WithConnectionError(err error) Option {
	return func(s *Service) { s.connErr = err }
}

// NewService wires the service. A nil store disables both remote operations.
func NewService(store TableStore, books *book.Index, cfg Config, opts ...Option) *Service {
	if books == nil {
		books = book.NewIndex(nil)
	}
	s := &Service{
		store:  store,
		books:  books,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether the storage connection was initialised.
func (s *Service) Available() bool {
	return s.store != nil
}

// ConnectionError returns the initialisation failure, if any.
func (s *Service) ConnectionError() error {
	if s.Available() {
		return nil
	}
	if s.connErr != nil {
		return s.connErr
	}
	return ErrConnectionUnavailable
}

// Books 返回书目选择索引
func (s *Service) Books() *book.Index {
	return s.books
}

// Config returns the table configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// BuildRequest stamps the form with the current time and resolves the inspiration label.
// Text fields are stored exactly as entered.
func (s *Service) BuildRequest(form storymodel.Form) storymodel.Request {
	req := storymodel.Request{
		Timestamp:      s.now().Format(storymodel.TimestampLayout),
		MainCharacter:  form.MainCharacter,
		Location:       form.Location,
		MainProblem:    form.MainProblem,
		TargetLanguage: form.TargetLanguage,
	}
	if form.HasInspiration() {
		label := form.InspirationLabel
		req.InspirationBookTitle = &label
		if id, ok := s.books.Lookup(label); ok {
			req.InspirationBookID = &id
		}
	}
	return req
}

// Submit appends one request row to the input table. Nothing is retried or kept locally.
func (s *Service) Submit(ctx context.Context, form storymodel.Form) (storymodel.Request, error) {
	req := s.BuildRequest(form)
	submissionID := s.newID()
	log := s.logger.With(zap.String("submission_id", submissionID), zap.String("table", s.cfg.InputTable))

	if !s.Available() {
		log.Warn("submit skipped, storage unavailable")
		return req, ErrConnectionUnavailable
	}

	if err := s.store.WriteTable(ctx, s.cfg.InputTable, req.Row(), false); err != nil {
		log.Error("failed to upload story request", zap.Error(err))
		return req, &RemoteError{Op: "write", Table: s.cfg.InputTable, Err: err}
	}

	log.Info("story request uploaded",
		zap.String("timestamp", req.Timestamp),
		zap.Bool("inspiration", req.InspirationBookID != nil),
	)
	return req, nil
}

// FetchLatest reads the output table and projects its latest row.
func (s *Service) FetchLatest(ctx context.Context) (Latest, error) {
	if !s.Available() {
		return Latest{}, ErrConnectionUnavailable
	}

	t, err := s.store.ReadTable(ctx, s.cfg.OutputTable)
	if err != nil {
		s.logger.Error("failed to read output table", zap.String("table", s.cfg.OutputTable), zap.Error(err))
		return Latest{}, &RemoteError{Op: "read", Table: s.cfg.OutputTable, Err: err}
	}

	latest := resolveLatest(t, s.cfg.LatestByTimestamp)
	s.logger.Debug("latest story resolved",
		zap.String("table", s.cfg.OutputTable),
		zap.String("kind", string(latest.Kind)),
		zap.Int("rows", t.Len()),
	)
	return latest, nil
}
