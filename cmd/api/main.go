package main

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/unrolled/secure"
	_ "github.com/willjrcristo/go-pix-subscriptions/docs" // Importa a pasta docs gerada

	// Nossos pacotes internos da aplicação!
	"github.com/willjrcristo/go-pix-subscriptions/internal/auth"
	"github.com/willjrcristo/go-pix-subscriptions/internal/config"
	httphandler "github.com/willjrcristo/go-pix-subscriptions/internal/handler/http"
	"github.com/willjrcristo/go-pix-subscriptions/internal/payment"
	"github.com/willjrcristo/go-pix-subscriptions/internal/repository"
	"github.com/willjrcristo/go-pix-subscriptions/internal/service"
)

// @title           API de Assinaturas
// @version         1.0
// @description     API de assinaturas por dispositivo com pagamento via PIX (Mercado Pago, Asaas, Efi ou mock) e cartão (Stripe).
//
// @contact.name   Will Cristo
// @contact.url    https://linkedin.com/in/willjrcristo
// @contact.email  willjrcristo@gmail.com
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @host      localhost:8080
// @BasePath  /
func main() {
	// --- 1. CONFIGURAÇÃO DO LOGGER ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	slog.Info("🚀 Iniciando a API de Assinaturas...")

	// --- 2. CONFIGURAÇÃO ---
	if err := godotenv.Load(); err != nil {
		slog.Info("Arquivo .env não encontrado, usando variáveis do ambiente")
	}
	cfg := config.Load()
	slog.Info("📊 Ambiente carregado", "app_env", cfg.AppEnv, "pix_provider", cfg.PixProvider)

	// --- 3. CONEXÃO COM O BANCO DE DADOS ---
	db, err := initDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("Erro ao inicializar o banco de dados", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("💾 Conexão com o banco de dados estabelecida com sucesso.")

	// --- 4. INJEÇÃO DE DEPENDÊNCIAS (WIRING) ---
	// DB -> Repository -> Service -> Handler

	repo := repository.NewSQLiteRepository(db)
	slog.Info("Camada de repositório inicializada")

	issuer := auth.NewDeviceTokenIssuer(cfg.JWTSecret)

	assinaturaService := service.NewAssinaturaService(repo, issuer, cfg.StripeWebhookSecret)
	slog.Info("Camada de serviço inicializada")

	dispatcher := payment.NewDispatcher(cfg)

	assinaturaHandler := httphandler.NewAssinaturaHandler(assinaturaService, cfg.IsDevelopment())
	pagamentoHandler := httphandler.NewPagamentoHandler(dispatcher, assinaturaService, cfg.IsDevelopment())
	slog.Info("Camada de handler inicializada")

	// --- 5. CONFIGURAÇÃO DO ROTEADOR E ROTAS ---
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	// Headers de segurança nas respostas
	seguranca := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
	})
	r.Use(seguranca.Handler)

	r.Use(prometheusMiddleware)

	// Rate limiting geral: 30 requisições por minuto por IP
	r.Use(httprate.LimitByIP(30, time.Minute))

	// Rota de Health Check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	// Métricas Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// Documentação Swagger: http://localhost:8080/swagger/index.html
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	slog.Info("📖 Documentação Swagger disponível em /swagger/index.html")

	// Rotas de pagamento
	r.Post("/pagamento", pagamentoHandler.CreatePaymentIntent)
	r.Post("/pagamento/webhook", pagamentoHandler.StripeWebhook)
	r.Post("/pix", pagamentoHandler.CreatePix)

	// Rotas de assinatura, com limites próprios para ativação e validação
	limitAtivacao := httprate.LimitByIP(5, 15*time.Minute)
	limitValidacao := httprate.LimitByIP(10, time.Minute)
	r.Mount("/subscription", assinaturaHandler.Routes(issuer.OptionalAuth, limitAtivacao, limitValidacao))
	slog.Info("🛰️  Rotas registradas")

	// Rota 404
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Rota não encontrada"})
	})

	// --- 6. INICIALIZAÇÃO DO SERVIDOR HTTP ---
	slog.Info("✅ Servidor pronto para receber requisições", "porta", cfg.Port)
	slog.Info("🔒 Segurança: headers + CORS + Rate Limiting ativados")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("Erro ao iniciar o servidor", "error", err)
		os.Exit(1)
	}
}

// initDB abre o banco SQLite e aplica as migrações embutidas.
func initDB(filepath string) (*sql.DB, error) {
	// _busy_timeout evita SQLITE_BUSY em escritas concorrentes do mesmo device.
	db, err := sql.Open("sqlite3", filepath+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err = repository.RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}
