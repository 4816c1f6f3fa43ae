package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	httpSwagger "github.com/swaggo/http-swagger"

	"pet-companion-chat/internal/adapters/llm/mock"
	mem "pet-companion-chat/internal/adapters/storage/memory"
	pg "pet-companion-chat/internal/adapters/storage/postgres"
	_ "pet-companion-chat/internal/docs"
	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/domain/session"
	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/middleware"
	"pet-companion-chat/internal/platform/logger"
	"pet-companion-chat/internal/platform/metrics"
)

type Options struct {
	// Opcional: si viene, se usa tal cual (mongo, firestore, tests).
	Repository trainers.Repository

	// Opcional: si viene (o hay DB_DSN), usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: sin completer se usa el mock local.
	Completer   chat.Completer
	ChatTimeout time.Duration

	// Límite de /chat por cliente. 0 = sin límite.
	ChatRatePerSec float64
	ChatRateBurst  int

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Credenciales de /metrics. Vacío = abierto.
	MetricsUser string
	MetricsPass string

	// Al cancelarse corta las tareas de fondo (limpieza del rate limiter).
	BaseContext context.Context
}

func NewRouter(opts Options) http.Handler {
	log := logger.OrNop(opts.Logger)

	m := opts.Metrics
	if m == nil {
		m = metrics.New(nil)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Monitor(m))
	r.Use(chimw.Recoverer)
	r.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.With(middleware.BasicAuth("metrics", opts.MetricsUser, opts.MetricsPass)).
		Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	repo := opts.Repository
	if repo == nil {
		repo = pickRepository(opts.DB, log)
	}

	completer := opts.Completer
	if completer == nil {
		log.Warn("no chat provider configured; using mock completer", nil)
		completer = mock.New()
	}

	// Services por módulo
	trainersSvc := trainers.NewService(repo)
	sessionSvc := session.NewService(trainersSvc, m, log)
	chatSvc := chat.NewService(completer, chat.WithTimeout(opts.ChatTimeout), chat.WithLogger(log))

	// Rutas por módulo
	trainers.RegisterRoutes(r, trainersSvc)
	session.RegisterRoutes(r, sessionSvc)

	r.Group(func(cr chi.Router) {
		if opts.ChatRatePerSec > 0 {
			rl := middleware.NewRateLimiter(opts.ChatRatePerSec, opts.ChatRateBurst,
				"The pet is tired of talking. Please wait a moment.", m.RateLimited)
			baseCtx := opts.BaseContext
			if baseCtx == nil {
				baseCtx = context.Background()
			}
			go rl.Cleanup(baseCtx, time.Minute)
			cr.Use(rl.Middleware)
		}
		chat.RegisterRoutes(cr, chatSvc)
	})

	return r
}

// pickRepository: DB explícita, o DB_DSN del entorno (dev/handoff), o memoria.
func pickRepository(db *sql.DB, log logger.Logger) trainers.Repository {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(ctx, dsn)
			if err == nil {
				db = opened
			} else {
				log.Error("postgres unavailable; falling back to memory", map[string]any{"err": err.Error()})
			}
		}
	}

	if db != nil {
		if err := pg.EnsureSchema(ctx, db); err != nil {
			log.Error("postgres schema", map[string]any{"err": err.Error()})
		}
		return pg.NewTrainersRepo(db)
	}
	return mem.NewTrainerRepo()
}
