package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	configs "github.com/dstackai/dstack/pkg/configs/server"
	ddb "github.com/dstackai/dstack/pkg/db"
	kpg "github.com/dstackai/dstack/pkg/db/postgres"
	"github.com/dstackai/dstack/pkg/storage"
	storagefs "github.com/dstackai/dstack/pkg/storage/fs"
	"github.com/dstackai/dstack/pkg/utils/filewatch"
)

func main() {

	pconfig := flag.String(
		"config", os.Getenv("DSTACK_SERVER_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "warn", "log level. debug|info|warn|error|off")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	conf, err := configs.Load(*pconfig)
	if err != nil {
		panic(err)
	}

	if *pconfig != "" {
		// restart (by the supervisor) on config updates.
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			panic(err)
		}
		defer wcancel()
		ctx = wctx
	}

	db, err := kpg.New(ctx, conf.Database)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	store, err := storagefs.New(conf.BlobRoot)
	if err != nil {
		panic(err)
	}

	server := BuildServer(db, store, conf, *loglevel)
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	user, created, err := db.Users().Ensure(ctx, conf.DefaultUser, uuid.NewString())
	if err != nil {
		panic(err)
	}
	if created {
		// this is the only time the token is shown. see "dstack config".
		server.Logger.Infof(
			"created user %q with token %s", user.Name, user.Token,
		)
		fmt.Printf(
			"To configure your dstack client, run:\n\n    dstack config add --user %s --token %s --server http://localhost:%d\n\n",
			user.Name, user.Token, conf.Port,
		)
	}

	go sweepGarbage(ctx, server.Logger.Infof, db.Garbage(), store, conf.GCInterval)

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(fmt.Sprintf(":%d", conf.Port)); err != nil && err != http.ErrServerClosed {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done(): // wait
		if err := ctx.Err(); err != nil {
			server.Logger.Infof("context has been done: %s, cause: %s", err, context.Cause(ctx))
			exit = 1
		}
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	{
		server.Logger.Info("shutting down...")
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()

		if err := server.Shutdown(qctx); err != nil {
			server.Logger.Fatalf("Shutdown with error. %+v", err)
			os.Exit(1)
		}
		os.Exit(exit)
	}
}

// sweepGarbage drops blobs orphaned by stack deletion, one sweep per
// interval, each sweep draining the garbage table.
func sweepGarbage(
	ctx context.Context,
	logf func(string, ...interface{}),
	garbage ddb.GarbageInterface,
	store storage.Store,
	interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for {
			popped, err := garbage.Pop(ctx, func(g ddb.Garbage) error {
				return store.Remove(ctx, g.BlobRef)
			})
			if err != nil {
				logf("garbage collection: %s", err)
				break
			}
			if !popped {
				break
			}
		}
	}
}
