package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.fiblab.net/sim/metro/router"
	"git.fiblab.net/sim/metro/store"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	// 配置信息
	configPath     = flag.String("config", "", "yaml config file, flags given explicitly take precedence")
	mongoURI       = flag.String("mongo_uri", "", "mongo db uri (default $MONGO_URI)")
	edgesPathStr   = flag.String("edges", "", "edge list [format: {fspath} or {db}.{col}]")
	cacheDir       = flag.String("cache", "", "input cache dir path (empty means disable cache)")
	storePath      = flag.String("store", "", "sqlite file keeping the last journey (empty means memory only)")
	routeCacheSize = flag.Int("route-cache", 1024, "LRU size of planned routes (0 means disable)")
	grpcEndpoint   = flag.String("listen", "localhost:52111", "connect listening address")
	logLevel       = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 单次查询，不启动服务
	queryFrom = flag.String("from", "", "plan one route from this station (name or index) and exit")
	queryTo   = flag.String("to", "", "destination of the one-shot query")
	queryMode = flag.String("mode", "distance", "search mode of the one-shot query [distance, interchange]")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "localhost:52112", "pprof listening address")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func loadConfig() *Config {
	cfg := &Config{}
	if *configPath != "" {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("invalid config: %v", err)
		}
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg.Merge(set, &CommandLine{
		Listen:         *grpcEndpoint,
		Pprof:          *pprofAddr,
		LogLevel:       *logLevel,
		Edges:          *edgesPathStr,
		MongoURI:       *mongoURI,
		CacheDir:       *cacheDir,
		StorePath:      *storePath,
		RouteCacheSize: *routeCacheSize,
	})
	if cfg.Data.MongoURI == "" {
		cfg.Data.MongoURI = os.Getenv("MONGO_URI")
	}
	return cfg
}

// 加载边表并构建路网，任何错误都是致命的
func newServer(cfg *Config) *MetroServer {
	edgesPath, err := NewPath(cfg.Data.Edges)
	if err != nil {
		log.Fatalf("invalid edges path: %s", err)
	}
	edges, err := loadEdges(context.Background(), cfg.Data.MongoURI, edgesPath, cfg.Data.CacheDir)
	if err != nil {
		log.Fatalf("failed to load edges: %v", err)
	}
	fares, err := cfg.FareTable()
	if err != nil {
		log.Fatalf("invalid fare table: %v", err)
	}
	r, err := router.New(edges, router.WithFareTable(fares))
	if err != nil {
		log.Fatalf("failed to build metro network: %v", err)
	}
	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
	}
	return NewMetroServer(r, NewJourneySlot(st), cfg.Cache.Size)
}

// 打印一次查询的结果
func runQuery(w io.Writer, server *MetroServer, from, to, modeStr string) error {
	mode, err := router.ParseMode(modeStr)
	if err != nil {
		return err
	}
	j, err := server.router.Route(from, to, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s -> %s (%s)\n", j.Start, j.End, j.Mode)
	for i, d := range j.Directions {
		fmt.Fprintf(w, "%2d. %s\n", i+1, d.Text())
	}
	fmt.Fprintf(w, "stations: %d, interchanges: %d, distance: %.2f km, fare: %d\n",
		len(j.Stations()), j.Interchanges, j.DistanceKm, j.Fare)
	return nil
}

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env loaded: %v", err)
	}
	cfg := loadConfig()
	if level, ok := LOG_LEVELS[cfg.Log.Level]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", cfg.Log.Level)
	}

	server := newServer(cfg)

	if *queryFrom != "" || *queryTo != "" {
		err := runQuery(os.Stdout, server, *queryFrom, *queryTo, *queryMode)
		server.Close()
		if err != nil {
			log.Fatalf("query failed: %v", err)
		}
		return
	}

	if cfg.Server.Pprof != "" {
		// 启动pprof
		startHTTPDebugger(cfg.Server.Pprof)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(server)
		server.Close()
		return
	}

	// 启动tcp监听和初始化connect服务端
	mux := http.NewServeMux()
	mux.Handle(NewMetroServiceHandler(server))

	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// 优雅退出
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	server.Close()
	log.Info("metro closes")
}
