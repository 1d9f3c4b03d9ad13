package startup

import (
	"context"
	"fmt"
	"github.com/casbin/casbin"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"os"
	"os/signal"
	"roombuddy/authorization"
	"roombuddy/casbinAuthorization"
	"roombuddy/domain"
	"roombuddy/handlers"
	"roombuddy/metrics"
	"roombuddy/service"
	"roombuddy/startup/config"
	"roombuddy/store"
	"syscall"
	"time"
)

type Server struct {
	config *config.Config
	logger *logrus.Logger
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
		logger: NewLogger(config),
	}
}

func (server *Server) Start() {
	ctx := context.Background()

	tp, shutdownTracing, err := newTracerProvider(server.config.JaegerAddress)
	if err != nil {
		server.logger.Fatalf("Failed to Initialize Exporter: %v", err)
	}
	defer func() { _ = shutdownTracing(ctx) }()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer := tp.Tracer(serviceName)

	mongoClient := server.initMongoClient(ctx)
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			server.logger.WithError(err).Warn("mongo disconnect")
		}
	}()
	db := mongoClient.Database(server.config.MongoDatabase)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		server.logger.Fatalf("Failed to create indexes: %v", err)
	}

	userStore := store.NewUserMongoDBStore(db, tracer)
	hostelStore := store.NewHostelMongoDBStore(db, tracer)
	roommateStore := store.NewRoommateMongoDBStore(db, tracer)

	userService := server.initUserService(userStore, server.initLoginAttemptStore(tracer), tracer)
	hostelService := application.NewHostelService(hostelStore, userStore, server.initReviewNotifier(tracer), tracer, server.logger)
	roommateService := application.NewRoommateService(roommateStore, userStore, tracer, server.logger)

	responder := handlers.NewResponder(server.logger, !server.config.IsProduction())
	auth := handlers.NewAuthMiddleware(userService, responder, tracer)
	admin := casbinAuthorization.CasbinMiddleware(server.initEnforcer(), server.logger)

	router := server.newRouter(
		handlers.NewUserHandler(userService, auth, admin, responder, tracer),
		handlers.NewHostelHandler(hostelService, auth, responder, tracer),
		handlers.NewRoommateHandler(roommateService, auth, responder, tracer),
		handlers.NewHealthHandler(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		}),
	)
	server.start(router)
}

func (server *Server) initMongoClient(ctx context.Context) *mongo.Client {
	client, err := store.GetClient(ctx, server.config.MongoURI)
	if err != nil {
		server.logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	server.logger.Info("MongoDB connected")
	return client
}

// initLoginAttemptStore returns nil when redis is not configured or not
// reachable, which turns login throttling off.
func (server *Server) initLoginAttemptStore(tracer trace.Tracer) domain.LoginAttemptStore {
	if server.config.RedisHost == "" {
		server.logger.Info("REDIS_HOST not set, login throttling disabled")
		return nil
	}
	client := store.GetRedisClient(server.config.RedisHost, server.config.RedisPort)
	if err := client.Ping().Err(); err != nil {
		server.logger.WithError(err).Warn("redis unreachable, login throttling disabled")
		return nil
	}
	return store.NewLoginAttemptRedisStore(client, tracer)
}

func (server *Server) initReviewNotifier(tracer trace.Tracer) domain.ReviewNotifier {
	if server.config.SMTPHost == "" {
		return application.NewLogNotifier(server.logger)
	}
	dialer := application.NewSMTPDialer(server.config.SMTPHost, server.config.SMTPPort, server.config.SMTPUser, server.config.SMTPPassword)
	return application.NewMailNotifier(dialer, server.config.SMTPFrom, tracer, server.logger)
}

func (server *Server) initUserService(store domain.UserStore, attempts domain.LoginAttemptStore, tracer trace.Tracer) *application.UserService {
	if server.config.UsesDefaultSecret() {
		server.logger.Warn("JWT_SECRET not set, using the default secret")
	}
	tokens, err := authorization.NewTokenManager(server.config.JWTSecret, authorization.TokenTTL)
	if err != nil {
		server.logger.Fatal(err)
	}
	return application.NewUserService(store, attempts, tokens, tracer, server.logger)
}

func (server *Server) initEnforcer() *casbin.Enforcer {
	enforcer, err := casbinAuthorization.NewEnforcer(server.config.RBACModel, server.config.RBACPolicy)
	if err != nil {
		server.logger.Fatal(err)
	}
	server.logger.Info("successful init of enforcer")
	return enforcer
}

func (server *Server) newRouter(userHandler *handlers.UserHandler, hostelHandler *handlers.HostelHandler, roommateHandler *handlers.RoommateHandler, health http.Handler) http.Handler {
	httpMetrics := metrics.NewHTTPMetrics(serviceName)
	accessLogger, err := NewAccessLogger(server.config, server.logger)
	if err != nil {
		server.logger.Fatalf("Failed to open access log: %v", err)
	}

	router := mux.NewRouter()
	router.Use(
		handlers.RequestIDMiddleware,
		handlers.ExtractTraceInfoMiddleware,
		httpMetrics.Middleware,
		handlers.LoggingMiddleware(accessLogger),
	)
	router.Handle("/metrics", httpMetrics.Handler()).Methods(http.MethodGet)
	router.Handle("/health", health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(MiddlewareContentTypeSet)
	userHandler.Init(api)
	hostelHandler.Init(api)
	roommateHandler.Init(api)
	api.PathPrefix("/").HandlerFunc(handlers.NotFound)

	router.PathPrefix("/").Handler(handlers.NewClientHandler(server.config.IsProduction(), server.config.ClientDistDir))

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type", handlers.RequestIDHeader}),
		gorillaHandlers.ExposedHeaders([]string{handlers.RequestIDHeader}),
	)
	return cors(router)
}

func (server *Server) start(handler http.Handler) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", server.config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wait := time.Second * 15
	go func() {
		server.logger.Infof("Server running in %s mode on port %s", server.config.Environment, server.config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.logger.Fatal(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		server.logger.Fatalf("Error Shutting Down Server %s", err)
	}
	server.logger.Println("Server Gracefully Stopped")
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}
