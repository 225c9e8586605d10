package backend

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis is one recorded verdict. The submitted graph itself is not kept.
type Analysis struct {
	ID        string    `json:"id"`
	NodeCount int       `json:"num_nodes"`
	EdgeCount int       `json:"num_edges"`
	IsDAG     bool      `json:"is_dag"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder keeps a log of verdicts.
type Recorder interface {
	RecordAnalysis(ctx context.Context, a *Analysis) error
	ListAnalyses(ctx context.Context, limit int) ([]Analysis, error)
}

type Config struct {
	// AllowOrigins lists CORS origins; empty means http://localhost:3000.
	AllowOrigins []string
	// Recorder is optional. Without it /pipelines/analyses answers 404.
	Recorder Recorder
	// Registry receives the service metrics; nil uses a private registry.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

const defaultListLimit = 20

// New builds the service's fiber app.
func New(cfg Config) *fiber.App {
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	h := &handlers{
		recorder: cfg.Recorder,
		log:      cfg.Logger,
		metrics:  newMetrics(cfg.Registry),
		validate: validator.New(),
	}

	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: !slices.Contains(cfg.AllowOrigins, "*"),
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "Pipeline validation API"})
	})
	app.Post("/pipelines/parse", h.parse)
	app.Get("/pipelines/analyses", h.listAnalyses)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	return app
}

type handlers struct {
	recorder Recorder
	log      *slog.Logger
	metrics  *metrics
	validate *validator.Validate
}

func (h *handlers) parse(c fiber.Ctx) error {
	var req ParseRequest
	if err := c.Bind().JSON(&req); err != nil {
		h.metrics.observe(resultInvalid, 0)
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.validate.Struct(req); err != nil {
		h.metrics.observe(resultInvalid, 0)
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	}

	out, err := Analyze(req)
	if errors.Is(err, ErrUnknownNode) || errors.Is(err, ErrDuplicateNode) {
		h.metrics.observe(resultInvalid, 0)
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	result := resultDAG
	if !out.IsDAG {
		result = resultCyclic
	}
	h.metrics.observe(result, out.NodeCount)
	h.log.Info("pipeline parsed", "nodes", out.NodeCount, "edges", out.EdgeCount, "is_dag", out.IsDAG)

	if h.recorder != nil {
		a := &Analysis{
			ID:        uuid.NewString(),
			NodeCount: out.NodeCount,
			EdgeCount: out.EdgeCount,
			IsDAG:     out.IsDAG,
			CreatedAt: time.Now().UTC(),
		}
		// The verdict stands even when it cannot be logged.
		if err := h.recorder.RecordAnalysis(c.Context(), a); err != nil {
			h.log.Error("record analysis", "error", err)
		}
	}

	return c.JSON(out)
}

func (h *handlers) listAnalyses(c fiber.Ctx) error {
	if h.recorder == nil {
		return c.Status(404).JSON(fiber.Map{"error": "analysis log not configured"})
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	list, err := h.recorder.ListAnalyses(c.Context(), limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(list)
}
