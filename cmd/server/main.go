package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"bulkbook/api/grpcserver"
	"bulkbook/api/ws"
	"bulkbook/domain/book"
	"bulkbook/infra/config"
	"bulkbook/infra/feed"
	"bulkbook/infra/logging"
	"bulkbook/infra/memory"
	"bulkbook/infra/outbox"
	"bulkbook/infra/sequence"
	"bulkbook/infra/wal"
	"bulkbook/jobs/broadcaster"
	"bulkbook/jobs/depth"
	"bulkbook/service"
	"bulkbook/snapshot"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Dir)
	logger.Info("starting engine", "symbol", cfg.Engine.Symbol)

	// ---------------- Durability ----------------

	entryWAL, err := wal.Open(wal.Config{
		Dir:         cfg.WAL.Dir,
		SegmentSize: cfg.WAL.SegmentSize,
	})
	if err != nil {
		logger.Error("wal init failed", "err", err)
		os.Exit(1)
	}
	defer entryWAL.Close()

	out, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		logger.Error("outbox init failed", "err", err)
		os.Exit(1)
	}
	defer out.Close()

	// ---------------- State recovery ----------------

	eng := book.NewEngine()
	seqGen := sequence.New(0)

	snapSeq := uint64(0)
	if snap, err := snapshot.Load(cfg.Snapshot.Dir); err != nil {
		logger.Error("snapshot load failed", "err", err)
		os.Exit(1)
	} else if snap != nil {
		if err := snapshot.Seed(eng, snap); err != nil {
			logger.Error("snapshot seed failed", "err", err)
			os.Exit(1)
		}
		snapSeq = snap.Seq
		logger.Info("snapshot restored", "seq", snapSeq, "orders", len(snap.Orders))
	}

	if err := service.Replay(cfg.WAL.Dir, snapSeq, eng, seqGen); err != nil {
		logger.Error("wal replay failed", "err", err)
		os.Exit(1)
	}
	if err := eng.CheckInvariants(); err != nil {
		logger.Error("book corrupt after recovery", "err", err)
		os.Exit(1)
	}
	logger.Info("recovery complete", "seq", seqGen.Current(), "resting", eng.Resting())

	// ---------------- Service ----------------

	ring := memory.NewRing(1 << 14)
	svc := service.New(eng, seqGen, entryWAL, out, ring, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ---------------- Background jobs ----------------

	bc, err := broadcaster.New(out, cfg.Kafka.Brokers, cfg.Kafka.FillTopic, 250*time.Millisecond, logger)
	if err != nil {
		logger.Error("broadcaster init failed", "err", err)
		os.Exit(1)
	}
	defer bc.Close()
	go bc.Run(ctx)

	depthProducer := feed.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DepthTopic)
	defer depthProducer.Close()
	dp := depth.New(svc, depthProducer, cfg.Engine.Symbol, cfg.Depth.Levels,
		time.Duration(cfg.Depth.IntervalMS)*time.Millisecond, logger)
	go dp.Run(ctx)

	go snapshotLoop(ctx, svc, cfg, logger)

	// ---------------- Websocket feed ----------------

	hub := ws.NewHub(svc, ring, cfg.Depth.Levels, logger)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handle)
	wsSrv := &http.Server{Addr: cfg.WS.Addr, Handler: mux}
	go func() {
		logger.Info("ws feed listening", "addr", cfg.WS.Addr)
		if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ws server exited", "err", err)
		}
	}()

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.GRPC.Addr, "err", err)
		os.Exit(1)
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(grpcserver.JSONCodec{}))
	grpcserver.Register(grpcSrv, grpcserver.NewServer(svc, logger))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		grpcSrv.GracefulStop()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = wsSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("order api listening", "addr", cfg.GRPC.Addr)
	if err := grpcSrv.Serve(lis); err != nil {
		logger.Error("grpc server exited", "err", err)
		os.Exit(1)
	}
}

// snapshotLoop periodically persists the book and trims covered WAL
// segments.
func snapshotLoop(ctx context.Context, svc *service.OrderService, cfg *config.Config, logger *slog.Logger) {
	writer := &snapshot.Writer{Dir: cfg.Snapshot.Dir}
	ticker := time.NewTicker(time.Duration(cfg.Snapshot.IntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq, err := svc.TakeSnapshot(writer)
			if err != nil {
				logger.Error("snapshot failed", "err", err)
				continue
			}
			if err := svc.TruncateWAL(seq); err != nil {
				logger.Error("wal truncate failed", "err", err)
				continue
			}
			logger.Info("snapshot written", "seq", seq)
		}
	}
}
