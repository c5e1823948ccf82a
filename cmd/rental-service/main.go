package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/DriveBook/DriveBook/internal/booking"
	"github.com/DriveBook/DriveBook/internal/catalog"
	"github.com/DriveBook/DriveBook/internal/common/config"
	"github.com/DriveBook/DriveBook/internal/common/db"
	"github.com/DriveBook/DriveBook/internal/common/logger"
	"github.com/DriveBook/DriveBook/internal/common/server"
	"github.com/DriveBook/DriveBook/internal/common/tracing"
	"github.com/DriveBook/DriveBook/internal/identity"
)

var (
	configPath  = flag.String("config", "configs/rental-service.json", "config file path")
	consulKVKey = flag.String("consul-kv", "", "optional consul KV key holding the JSON config")
	consulHost  = flag.String("consul-host", "localhost", "consul agent host for -consul-kv")
	consulPort  = flag.Int("consul-port", 8500, "consul agent port for -consul-kv")
)

func main() {
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *consulKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&identity.User{}, &catalog.Car{}, &booking.Reservation{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	carRepo := catalog.NewRepo(gormDB)
	resRepo := booking.NewRepo(gormDB)
	userRepo := identity.NewRepo(gormDB)

	if err := catalog.SeedIfEmpty(context.Background(), carRepo); err != nil {
		log.Fatalf("failed to seed car catalog: %v", err)
	}

	identityHandler := identity.NewHandler(identity.NewService(userRepo, cfg.Auth))
	catalogHandler := catalog.NewHandler(catalog.NewService(carRepo, resRepo))
	bookingHandler := booking.NewHandler(booking.NewService(resRepo, carRepo))

	ping := func(ctx context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	if err := server.RunHTTPServer(cfg, log, ping, func(mux *http.ServeMux) {
		identityHandler.Register(mux)
		catalogHandler.Register(mux)
		bookingHandler.Register(mux)
	}); err != nil {
		log.Fatalf("rental-service exited with error: %v", err)
	}
}
