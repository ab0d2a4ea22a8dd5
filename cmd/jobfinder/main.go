package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/jobradar/jobfinder/internal/conf"
	"github.com/jobradar/jobfinder/internal/server"
	"github.com/jobradar/jobfinder/internal/service"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the service name.
	Name string = "jobfinder"
	// Version is the service version.
	Version string
	// flagconf is the config file path flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	app, cleanup, err := initApp(bc.Server, bc.Finder, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}

// initApp assembles the engine, service and HTTP server into a kratos
// application.
func initApp(sc *conf.Server, fc *conf.Finder, logger log.Logger) (*kratos.App, func(), error) {
	eng, _, engCleanup, err := server.NewFinderEngine(fc, logger)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewFinderService(eng, Version, logger)
	srv := server.NewHTTPServer(sc, svc, logger)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(logger),
		kratos.Server(srv),
	)
	return app, engCleanup, nil
}
