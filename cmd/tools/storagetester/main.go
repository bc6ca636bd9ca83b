package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-fairytale/backend/internal/config"
	"github.com/zhouzirui/z-fairytale/backend/internal/logger"
	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	"github.com/zhouzirui/z-fairytale/backend/internal/service/keboola"
	storyservice "github.com/zhouzirui/z-fairytale/backend/internal/service/story"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}
	cfg.Log.Encoding = "console"
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "日志初始化失败: %v\n", err)
		os.Exit(1)
	}
	if envErr != nil {
		log.Warn("无法加载 .env，改用系统环境变量", zap.Error(envErr))
	}

	mode := flag.String("mode", "", "测试模式: ping, latest 或 submit")
	character := flag.String("character", "Test hero", "submit: main character")
	location := flag.String("location", "Enchanted Forest", "submit: location")
	problem := flag.String("problem", "", "submit: main problem")
	inspiration := flag.String("inspiration", "", "submit: book label, e.g. \"Title (id)\"")
	language := flag.String("lang", "English", "submit: target language")
	timeout := flag.Duration("timeout", 45*time.Second, "请求超时时间")
	flag.Parse()

	if !cfg.Storage.Enabled() {
		log.Fatal("存储客户端未配置，请先设置 KBC_URL 与 KBC_TOKEN")
	}

	if err := run(log, cfg, options{
		mode:    *mode,
		timeout: *timeout,
		form: storymodel.Form{
			MainCharacter:    *character,
			Location:         *location,
			MainProblem:      *problem,
			InspirationLabel: *inspiration,
			TargetLanguage:   *language,
		},
	}); err != nil {
		if errors.Is(err, errUnknownMode) {
			flag.Usage()
		}
		log.Fatal("storage test failed", zap.String("mode", *mode), zap.Error(err))
	}
}

var errUnknownMode = errors.New("请通过 -mode=ping, -mode=latest 或 -mode=submit 指定测试模式")

type options struct {
	mode    string
	timeout time.Duration
	form    storymodel.Form
}

// run 执行一次测试，所有失败都以 error 返回，由 main 统一退出
func run(log *zap.Logger, cfg *config.Config, opts options) error {
	client, err := keboola.NewClient(keboola.Config{
		URL:          cfg.Storage.URL,
		Token:        cfg.Storage.Token,
		Timeout:      cfg.Storage.Timeout,
		PollInterval: cfg.Storage.PollInterval,
	}, keboola.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	switch opts.mode {
	case "ping":
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("token verification failed: %w", err)
		}
		log.Info("token verified", zap.String("url", cfg.Storage.URL))
		return nil
	case "latest", "submit":
	default:
		return errUnknownMode
	}

	var books []book.Book
	if opts.mode == "submit" {
		if books, err = book.LoadCSV(cfg.Story.BooksPath); err != nil {
			log.Warn("books not loaded, inspiration ids will be empty", zap.Error(err))
		}
	}
	svc := storyservice.NewService(client, book.NewIndex(books), storyservice.Config{
		InputTable:        cfg.Story.InputTable,
		OutputTable:       cfg.Story.OutputTable,
		LatestByTimestamp: cfg.Story.LatestByTimestamp,
	}, storyservice.WithLogger(log))

	if opts.mode == "latest" {
		return runLatest(ctx, svc)
	}
	return runSubmit(ctx, svc, opts.form)
}

func runLatest(ctx context.Context, svc *storyservice.Service) error {
	latest, err := svc.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest: %w", err)
	}
	return printJSON(latest)
}

func runSubmit(ctx context.Context, svc *storyservice.Service, form storymodel.Form) error {
	req, err := svc.Submit(ctx, form)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return printJSON(req)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
