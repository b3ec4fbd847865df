package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"etasync/internal/config"
	"etasync/internal/database"
	"etasync/internal/database/migration"
	"etasync/internal/eta"
	"etasync/internal/logutils"
	"etasync/internal/repository/postgres"
	"etasync/internal/service"
	"etasync/internal/storage"
)

type argsT struct {
	StartDate  string `arg:"-s,--start-date,env:ETA_SYNC_START_DATE" help:"first submission date (YYYY-MM-DD or RFC3339), defaults to 30 days ago"`
	EndDate    string `arg:"-e,--end-date,env:ETA_SYNC_END_DATE" help:"last submission date (YYYY-MM-DD or RFC3339), defaults to now"`
	ReceiverID string `arg:"-r,--receiver-id,env:ETA_SYNC_RECEIVER_ID" help:"only documents sent to this receiver"`
	NoArchive  bool   `arg:"--no-archive" help:"skip the raw document archive even when MinIO is configured"`
	Debug      bool   `arg:"-D,--debug,env:ETA_SYNC_DEBUG"`
}

func (argsT) Description() string {
	return "Runs one ETA invoice synchronization pass and prints the run statistics as JSON."
}

var args argsT

var log = logrus.StandardLogger()

func main() {
	arg.MustParse(&args)

	cfg := config.Load()
	loc := cfg.Location()
	logutils.Setup(cfg.LogLevel, loc)
	if args.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	// Statistics go to stdout, logs to stderr.
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, loc); err != nil {
		log.Fatalf("eta sync failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, loc *time.Location) error {
	req, err := buildRequest(args, loc)
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		return err
	}

	client, err := eta.New(cfg.ETA)
	if err != nil {
		return err
	}

	var opts []service.SyncOption
	if cfg.MinIO.Enabled() && !args.NoArchive {
		archive, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		opts = append(opts, service.WithArchive(archive))
	}

	svc := service.NewInvoiceSyncService(client, postgres.NewInvoicePostgres(db), service.SyncConfigFrom(cfg.ETA), opts...)
	stats, syncErr := svc.Sync(ctx, req)
	if stats != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}
	}
	return syncErr
}

// buildRequest parses the date flags in loc.
func buildRequest(a argsT, loc *time.Location) (service.SyncRequest, error) {
	req := service.SyncRequest{ReceiverID: a.ReceiverID}
	var err error
	if req.StartDate, err = parseDate(a.StartDate, loc); err != nil {
		return req, err
	}
	if req.EndDate, err = parseDate(a.EndDate, loc); err != nil {
		return req, err
	}
	return req, nil
}

func parseDate(v string, loc *time.Location) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t, nil
		}
	}
	return nil, &time.ParseError{Layout: "2006-01-02", Value: v, Message: ": expected YYYY-MM-DD or RFC3339"}
}
