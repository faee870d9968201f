package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/formhive/formhive/internal/config"
	"github.com/formhive/formhive/internal/infrastructure/providers"
	"github.com/formhive/formhive/internal/infrastructure/repository"
	"github.com/formhive/formhive/internal/present/rest"
	authmiddleware "github.com/formhive/formhive/internal/present/rest/middleware"
	"github.com/formhive/formhive/internal/service"
	"github.com/formhive/formhive/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)
	mc := providers.NewMemcache(conf.Server)

	userRepo := repository.NewUserRepository(db)
	formRepo := repository.NewFormRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	structureCache := repository.NewStructureCache(mc)

	authService := service.NewAuthService(conf.Auth)
	signalService := service.NewSignalService(rdb)

	availabilityUC := usecase.NewAvailabilityUsecase(formRepo, groupRepo)
	userUC := usecase.NewUserUsecase(userRepo)
	formUC := usecase.NewFormUsecase(formRepo, groupRepo, submissionRepo, signalService)
	structureUC := usecase.NewStructureUsecase(formRepo, availabilityUC, structureCache)
	submissionUC := usecase.NewSubmissionUsecase(formRepo, submissionRepo, userRepo, availabilityUC, signalService)
	reportUC := usecase.NewReportUsecase(submissionRepo, availabilityUC)
	groupUC := usecase.NewGroupUsecase(groupRepo, userRepo)

	cascade := service.NewCascadeListener(rdb, submissionRepo)
	go cascade.Run(ctx)

	handler := rest.NewHandler(
		userUC,
		formUC,
		structureUC,
		availabilityUC,
		submissionUC,
		reportUC,
		groupUC,
		authService,
		signalService,
	)

	auth := authmiddleware.NewAuthMiddleware(authService)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("formhive"))
	}
	e.Use(auth.IdentifyRequester)

	handler.RegisterRoutes(e, auth.RequireAuth)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName("formhive"),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
