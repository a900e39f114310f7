package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"patchnotes/internal/api"
	"patchnotes/internal/infra"
	"patchnotes/internal/notify"
	"patchnotes/internal/payment"
)

func main() {
	phone := flag.String("phone", "", "M-Pesa phone number (e.g. 0712345678)")
	amount := flag.String("amount", "", "donation amount in KES (10 - 70,000)")
	postID := flag.String("post", "", "optional post id the donation is attached to")
	diagnose := flag.Bool("diagnose", false, "run backend payment diagnostics and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client, err := api.NewClient(api.Options{
		BaseURL:        cfg.APIBaseURL,
		AccessToken:    os.Getenv("ACCESS_TOKEN"),
		Logger:         &logger,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure api client")
	}
	gateway := payment.NewHTTPGateway(client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *diagnose {
		runDiagnostics(ctx, gateway, *phone, logger)
		return
	}

	notifier := notify.NewConsole(os.Stdout)
	coordinator, err := payment.NewCoordinator(payment.Options{
		Gateway:  gateway,
		Notifier: notifier,
		Logger:   &logger,
		Policy: payment.Policy{
			PollInterval:          cfg.PollInterval,
			MaxPollAttempts:       cfg.PollMaxAttempts,
			AmbiguousFailureLimit: cfg.AmbiguousFailureLimit,
			TransportFailureLimit: cfg.TransportFailureLimit,
			SuccessDismissDelay:   cfg.SuccessDismissDelay,
			DefinitiveCodes:       payment.DefinitiveCodesFor(cfg.DefinitiveCodes),
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure coordinator")
	}

	if _, err := coordinator.Submit(ctx, *phone, *amount, *postID); err != nil {
		// The notifier already showed the user-facing message.
		var validation *payment.ValidationError
		if errors.As(err, &validation) {
			flag.Usage()
		}
		os.Exit(1)
	}

	notifier.Info("Waiting for payment... check your phone for the M-Pesa prompt. Press Ctrl-C to dismiss.")

	select {
	case <-ctx.Done():
		// Dismissal: stop polling, leave the remote payment to its fate.
		coordinator.Close()
		notifier.Info("Dismissed. The payment may still complete on your phone.")
		os.Exit(1)
	case <-coordinator.Done():
	}

	switch coordinator.State() {
	case payment.StateSuccess:
		// Mirror the web dialog: show the receipt briefly, then close.
		time.Sleep(coordinator.Policy().SuccessDismissDelay)
		coordinator.Close()
	default:
		coordinator.Close()
		os.Exit(1)
	}
}

func runDiagnostics(ctx context.Context, gateway *payment.HTTPGateway, testPhone string, logger infra.Logger) {
	report, err := gateway.Diagnostics(ctx, testPhone)
	if err != nil {
		logger.Fatal().Err(err).Msg("diagnostics failed")
	}
	var pretty map[string]any
	if err := json.Unmarshal(report, &pretty); err != nil {
		fmt.Println(string(report))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}
