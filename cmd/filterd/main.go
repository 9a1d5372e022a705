// Command filterd compiles packet-filter definitions stored in a registry
// into classic or extended BPF programs and keeps them attached to a
// socket, recompiling and reattaching whenever a definition changes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SkynetNext/bpf-filter/internal/api"
	"github.com/SkynetNext/bpf-filter/internal/config"
	"github.com/SkynetNext/bpf-filter/internal/filter/cbpf"
	"github.com/SkynetNext/bpf-filter/internal/filter/ebpf"
	"github.com/SkynetNext/bpf-filter/internal/filter/wire"
	"github.com/SkynetNext/bpf-filter/internal/healthcheck"
	"github.com/SkynetNext/bpf-filter/internal/reattach"
	"github.com/SkynetNext/bpf-filter/internal/server"
	"github.com/SkynetNext/bpf-filter/internal/telemetry"
	"github.com/SkynetNext/bpf-filter/pkg/filtermetrics"
	"github.com/SkynetNext/bpf-filter/pkg/registry"
	"github.com/SkynetNext/bpf-filter/pkg/socket"
	"github.com/SkynetNext/bpf-filter/pkg/xlog"
)

const defaultFilterName = "default"

func main() {
	xlog.Infof("Starting filterd...")

	cfg := config.Load()
	xlog.Infof("Config loaded: iface=%s backend=%s admin=%s", cfg.Socket.Interface, cfg.Socket.Backend, cfg.Admin.ListenAddr)

	if cfg.Tracing.Enabled {
		if err := telemetry.Init(cfg.Tracing.ServiceName, cfg.Tracing.JaegerURL); err != nil {
			xlog.Warnf("Failed to initialize tracing: %v", err)
		}
	}

	reg, err := registry.New(registry.Config{
		Addr:      cfg.Registry.Addr,
		Password:  cfg.Registry.Password,
		DB:        cfg.Registry.DB,
		KeyPrefix: cfg.Registry.KeyPrefix,
	})
	if err != nil {
		xlog.Errorf("Failed to connect to filter registry: %v", err)
		os.Exit(1)
	}
	defer reg.Close()

	sock, err := socket.Open(cfg.Socket.Interface)
	if err != nil {
		xlog.Errorf("Failed to open packet socket on %s: %v", cfg.Socket.Interface, err)
		os.Exit(1)
	}
	defer sock.Close()

	checker := healthcheck.New(reg, 10*time.Second)
	checker.Start()
	defer checker.Stop()

	throttle := reattach.New(cfg.Reattach.RequestsPerSecond, cfg.Reattach.Burst)

	applyFilter := func(name string) {
		err := throttle.Guard(name, func() error {
			return attachDefinition(context.Background(), reg, sock, cfg.Socket.Backend, name)
		})
		switch {
		case err == nil:
			checker.SetAttached(true)
			filtermetrics.RecordReattach(name, "ok")
		default:
			if _, throttled := err.(reattach.ErrThrottled); throttled {
				filtermetrics.RecordReattach(name, "throttled")
				xlog.Warnf("reattach throttled: %v", err)
				return
			}
			filtermetrics.RecordReattach(name, "error")
			xlog.Errorf("failed to apply filter %q: %v", name, err)
		}
	}

	applyFilter(defaultFilterName)

	go func() {
		for name := range reg.Changes() {
			applyFilter(name)
		}
	}()

	admin := api.New(reg)
	srv := server.New(cfg, admin, checker)
	srv.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	xlog.Infof("Received signal: %v. Shutting down...", sig)

	srv.Shutdown(cfg.Lifecycle.ShutdownTimeout)
	xlog.Infof("filterd exited successfully.")
}

func attachDefinition(ctx context.Context, reg *registry.Registry, sock *socket.Socket, backend, name string) error {
	def, err := reg.Get(name)
	if err != nil {
		return err
	}
	if def.Backend != "" {
		backend = def.Backend
	}

	switch backend {
	case "extended":
		compileCtx, compileSpan := telemetry.StartCompile(ctx, name)
		start := time.Now()
		insns, err := wire.CompileExtended(def.Expr)
		if err != nil {
			filtermetrics.RecordCompile("extended", "error", time.Since(start).Seconds(), 0)
			compileSpan.End()
			return err
		}
		built, err := ebpf.NewProgram(insns)
		if err != nil {
			filtermetrics.RecordCompile("extended", "too_long", time.Since(start).Seconds(), len(insns))
			compileSpan.End()
			return err
		}
		filtermetrics.RecordCompile("extended", "ok", time.Since(start).Seconds(), built.Len())
		compileSpan.End()

		_, attachSpan := telemetry.StartAttach(compileCtx, name)
		defer attachSpan.End()

		fd, err := built.Load()
		if err != nil {
			filtermetrics.RecordAttach("extended", "kernel_rejected")
			return err
		}
		// The socket keeps its own reference once attached.
		defer syscall.Close(fd)
		if err := sock.SetExtendedFilter(fd); err != nil {
			filtermetrics.RecordAttach("extended", "attach_failed")
			return err
		}
		filtermetrics.RecordAttach("extended", "ok")
		return nil

	default:
		compileCtx, compileSpan := telemetry.StartCompile(ctx, name)
		start := time.Now()
		insns, err := wire.CompileClassic(def.Expr)
		if err != nil {
			filtermetrics.RecordCompile("classic", "error", time.Since(start).Seconds(), 0)
			compileSpan.End()
			return err
		}
		built, err := cbpf.NewProgram(insns)
		if err != nil {
			filtermetrics.RecordCompile("classic", "too_long", time.Since(start).Seconds(), len(insns))
			compileSpan.End()
			return err
		}
		filtermetrics.RecordCompile("classic", "ok", time.Since(start).Seconds(), built.Len())
		compileSpan.End()

		_, attachSpan := telemetry.StartAttach(compileCtx, name)
		defer attachSpan.End()

		if err := sock.SetFilter(built); err != nil {
			filtermetrics.RecordAttach("classic", "attach_failed")
			return err
		}
		filtermetrics.RecordAttach("classic", "ok")
		return nil
	}
}
