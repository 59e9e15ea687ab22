package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/scholarshield/backend/internal/agents"
	"example.com/scholarshield/backend/internal/cache"
	"example.com/scholarshield/backend/internal/config"
	"example.com/scholarshield/backend/internal/docintel"
	"example.com/scholarshield/backend/internal/handlers"
	"example.com/scholarshield/backend/internal/llm"
	"example.com/scholarshield/backend/internal/orchestrator"
	"example.com/scholarshield/backend/internal/progress"
	"example.com/scholarshield/backend/internal/repository"
	"example.com/scholarshield/backend/internal/search"
	"example.com/scholarshield/backend/internal/translate"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(requestLogger(logger))

	archive := newArchive(cfg.Archive, db)
	hub := progress.NewHub()

	extractor, textReader := newDocIntel(cfg.DocIntel)
	searcher, indexer := newSearch(cfg.Search, cfg.Cache)
	advisor, negotiator, grantWriter, explainer := newAgents(cfg)

	orc := orchestrator.New(orchestrator.Config{
		Extractor:    extractor,
		Searcher:     searcher,
		Advisor:      advisor,
		Negotiator:   negotiator,
		GrantWriter:  grantWriter,
		Explainer:    explainer,
		Observer:     progress.NewHubObserver(hub),
		Requests:     archive,
		DefaultIndex: cfg.Search.DefaultIndex,
		SearchTop:    cfg.Search.TopK,
		Logger:       logger,
	})

	assessHandler := handlers.NewAssessHandler(orc, archive, hub, cfg.Server.MaxUploadBytes)
	grantHandler := handlers.NewGrantHandler(orc)
	explainHandler := handlers.NewExplainHandler(orc)
	handbookHandler := handlers.NewHandbookHandler(indexer, textReader, cfg.Server.MaxUploadBytes)
	caseHandler := handlers.NewCaseHandler(archive)
	progressHandler := handlers.NewProgressHandler(hub)

	registerRoutes(
		e,
		assessHandler,
		grantHandler,
		explainHandler,
		handbookHandler,
		caseHandler,
		progressHandler,
		agentRateLimiter(cfg.LLM),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func newArchive(cfg config.ArchiveConfig, db *pgxpool.Pool) repository.Archive {
	if strings.ToLower(cfg.Driver) == config.DriverPostgres && db != nil {
		return repository.NewCaseRepository(db)
	}
	return repository.NewMemoryArchive()
}

func newDocIntel(cfg config.DocIntelConfig) (docintel.Extractor, docintel.TextReader) {
	if strings.ToLower(cfg.Provider) == config.ProviderAzure {
		client := docintel.NewAzureClient(cfg.APIKey, cfg.Endpoint, cfg.Timeout)
		return client, client
	}
	// В stub-режиме извлечение сплошного текста недоступно.
	return docintel.NewStub(), nil
}

func newSearch(cfg config.SearchConfig, cacheCfg config.CacheConfig) (search.Searcher, search.Indexer) {
	if strings.ToLower(cfg.Provider) == config.ProviderAzure {
		client := search.NewAzureClient(cfg.APIKey, cfg.Endpoint, cfg.APIVersion, cfg.Timeout)
		return search.NewCached(client, newCacheStore(cacheCfg), cacheCfg.SearchTTL), client
	}

	memory := search.NewMemory()
	memory.SeedDefaultPolicies(cfg.DefaultIndex)
	return memory, memory
}

func newCacheStore(cfg config.CacheConfig) cache.Cache {
	if strings.ToLower(cfg.Driver) == config.DriverRedis {
		return cache.NewRedis(cfg.RedisAddr)
	}
	return cache.NewMemory()
}

func newAgents(cfg config.Config) (agents.Advisor, agents.Negotiator, agents.GrantWriter, agents.Explainer) {
	provider := strings.ToLower(cfg.LLM.Provider)
	if provider == config.ProviderStub {
		return agents.NewStubAdvisor(), agents.NewStubNegotiator(), agents.NewStubGrantWriter(), agents.NewStubExplainer()
	}

	var client llm.Client
	switch provider {
	case config.ProviderOpenAI:
		client = llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout, cfg.LLM.MaxOutputTokens)
	default:
		client = llm.NewAzureOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Deployment, cfg.LLM.APIVersion, cfg.LLM.Timeout, cfg.LLM.MaxOutputTokens)
	}

	translator, speech := newTranslate(cfg.Translate, cfg.Speech)

	return agents.NewLLMAdvisor(client),
		agents.NewLLMNegotiator(client),
		agents.NewLLMGrantWriter(client),
		agents.NewLLMExplainer(client, translator, speech)
}

func newTranslate(translateCfg config.TranslateConfig, speechCfg config.SpeechConfig) (translate.Translator, translate.Synthesizer) {
	var translator translate.Translator = translate.NewStubTranslator()
	if strings.ToLower(translateCfg.Provider) == config.ProviderAzure {
		translator = translate.NewAzureTranslator(translateCfg.APIKey, translateCfg.Endpoint, translateCfg.Region, translateCfg.Timeout)
	}

	var speech translate.Synthesizer = translate.NewStubSpeech()
	if strings.ToLower(speechCfg.Provider) == config.ProviderAzure {
		speech = translate.NewAzureSpeech(speechCfg.APIKey, speechCfg.Region, speechCfg.Timeout)
	}

	return translator, speech
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func agentRateLimiter(cfg config.LLMConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
