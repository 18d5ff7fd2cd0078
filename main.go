package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"content_generation_suite/client"
	"content_generation_suite/config"
	"content_generation_suite/export"
	"content_generation_suite/form"
	"content_generation_suite/generator"
	"content_generation_suite/lifecycle"
	"content_generation_suite/logger"
	"content_generation_suite/server"
)

var verbose bool

type exportOptions struct {
	copy bool
	file bool
	html bool
	edit bool
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.json")
	contentType := flag.String("type", string(form.ContentBlog), "content type: blog, social or email")
	topic := flag.String("topic", "", "topic to write about")
	tone := flag.String("tone", string(form.ToneProfessional), "tone: professional, casual, friendly, authoritative or conversational")
	audience := flag.String("audience", "", "target audience")
	keywords := flag.String("keywords", "", "comma-separated SEO keywords")
	var opts exportOptions
	flag.BoolVar(&opts.copy, "copy", false, "copy the generated content to the clipboard")
	flag.BoolVar(&opts.file, "out", false, "save the content as <type>-<topic>.txt")
	flag.BoolVar(&opts.html, "html", false, "save an HTML rendering as <type>-<topic>.html")
	flag.BoolVar(&opts.edit, "edit", false, "open the generated content in $EDITOR before exporting")
	serve := flag.Bool("serve", false, "start the generation service")
	addr := flag.String("addr", "", "http listen address when -serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.Init(level, cfg.Log.Format)

	// Web server mode
	if *serve {
		if err := runServer(cfg, *addr, log); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	f := form.NewModel(nil)
	f.SetTopic(*topic)
	f.SetAudience(*audience)
	f.SetKeywords(*keywords)
	if err := f.SetContentType(form.ContentType(*contentType)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := f.SetTone(form.Tone(*tone)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := runGenerate(context.Background(), cfg, f, opts, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, cfg config.Config, f *form.Model, opts exportOptions, log *slog.Logger) error {
	if err := cfg.RequireBaseURL(); err != nil {
		return err
	}
	c, err := client.New(cfg.BaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	if err != nil {
		return err
	}
	m, err := lifecycle.New(c, log)
	if err != nil {
		return err
	}
	f.Attach(m)

	states, unsubscribe := m.Subscribe()
	defer unsubscribe()
	go func() {
		for s := range states {
			fmt.Fprintln(os.Stderr, renderStatus(s))
		}
	}()

	log.Info("[cli] generating", "endpoint", c.Endpoint(), "topic", f.Topic())
	call, err := m.Submit(ctx, f)
	if errors.Is(err, lifecycle.ErrNotSubmittable) {
		return errors.New("-topic is required")
	}
	if err != nil {
		return err
	}
	<-call.Done()

	s := m.State()
	if s.Phase == lifecycle.PhaseError {
		fmt.Println(renderState(s, ""))
		return errors.New("generation failed")
	}

	if opts.edit {
		edited, err := editInEditor(m.Draft())
		if err != nil {
			log.Warn("[cli] edit skipped", "error", err)
		} else if err := m.Edit(edited); err != nil {
			log.Warn("[cli] edit rejected", "error", err)
		}
	}
	draft := m.Draft()
	fmt.Println(renderState(s, draft))

	ex := export.New(export.SystemClipboard(), export.DirSaver{Dir: cfg.DownloadDir}, log)
	in := f.Input()
	if opts.copy {
		_ = ex.CopyToClipboard(draft)
	}
	if opts.file {
		ex.DownloadAsFile(draft, export.SuggestedName(in.ContentType, in.Topic, "txt"))
	}
	if opts.html {
		ex.DownloadAsHTML(draft, in.Topic, export.SuggestedName(in.ContentType, in.Topic, "html"))
	}
	return nil
}

func runServer(cfg config.Config, addr string, log *slog.Logger) error {
	llm, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm, log)
	if err != nil {
		return err
	}
	srv, err := server.New(agent, log, nil)
	if err != nil {
		return err
	}
	listen := cfg.ServerAddr
	if addr != "" {
		listen = addr
	}
	if listen == "" {
		listen = ":5000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: listen, Handler: srv.Routes(), ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting web server", "addr", listen, "provider", cfg.LLM.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
