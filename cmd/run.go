package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/feelio/internal/app"
	"github.com/abhisek/feelio/internal/config"
	"github.com/abhisek/feelio/internal/feedback"
	"github.com/abhisek/feelio/internal/i18n"
	"github.com/abhisek/feelio/internal/llm"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/speech"
	"github.com/abhisek/feelio/internal/store"
	"github.com/abhisek/feelio/internal/telemetry"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	shutdown, err := telemetry.Init(ctx, e.log, e.cfg.Telemetry, version,
		filepath.Join(filepath.Dir(e.dbPath), "traces.jsonl"))
	if err != nil {
		e.log.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		if shutdown != nil {
			_ = shutdown(context.Background())
		}
	}()

	t, err := i18n.New(e.cfg.Locale)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	src, err := feedbackSource(ctx, e.cfg, e.client, e.store.EventRepo(), e.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM feedback not configured:", err)
		fmt.Fprintln(os.Stderr, "Falling back to backend feedback.")
		src = feedback.NewBackendSource(e.client)
	}

	rec, closeRec := recognizer(ctx, e.cfg.Speech, e.log)
	defer closeRec()

	skip, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{
		Deps: nav.Deps{
			Auth:     e.auth,
			API:      e.client,
			Feedback: src,
			Speech:   rec,
			Journal:  e.store.ActivityRepo(),
			T:        t,
			Log:      e.log,
		},
		SkipWelcome: skip,
	})
}

// feedbackSource picks where mentor feedback comes from.
func feedbackSource(ctx context.Context, cfg config.Config, backend feedback.Backend, events store.EventRepo, log *logger.Logger) (feedback.Source, error) {
	if cfg.FeedbackSource != config.FeedbackLLM {
		return feedback.NewBackendSource(backend), nil
	}
	lc, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, lc, events, log)
	if err != nil {
		return nil, err
	}
	return feedback.NewLLMSource(provider, feedback.DefaultConfig(), log), nil
}

// recognizer wires dictation when it is enabled and the cloud client can be
// built. The returned func releases the client.
func recognizer(ctx context.Context, cfg config.SpeechConfig, log *logger.Logger) (speech.Recognizer, func()) {
	if !cfg.Enabled {
		return speech.Unavailable{}, func() {}
	}
	tr, err := speech.NewCloudTranscriber(ctx, speech.CloudConfig{
		Language:        cfg.Language,
		SampleRate:      cfg.SampleRate,
		CredentialsFile: cfg.CredentialsFile,
	}, log)
	if err != nil {
		log.Warn("speech recognition unavailable", "error", err)
		return speech.Unavailable{}, func() {}
	}
	d := speech.NewDictation(speech.ExecRecorder{Command: cfg.RecordCommand}, tr, log)
	return d, func() { _ = tr.Close() }
}
