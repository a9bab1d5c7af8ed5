package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/cache"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/provider"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/scanner"
)

// ---------------------------------------------------------------------------
// translate (batch translation of selected entries)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate selected entries in batches through the AI provider",
		Long: `Translate every selected entry that has no translation yet. Entries are
submitted in batches; a failed batch leaves its entries selected and does
not affect other batches. Re-running the command retries only what is
still untranslated. Ctrl-C cancels after the current batch finishes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			queue := strex.SelectUntranslated(app.store.Entries())
			if len(queue) == 0 {
				logInfo("nothing to translate; run 'strx select' first")
				return nil
			}

			translator, err := buildTranslator(app)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logInfo("translating %d entries to %s", len(queue), strex.LanguageName(app.cfg.TargetLang))
			job := translator.Start(ctx, queue, app.store.Persist)

			go func() {
				<-ctx.Done()
				job.Cancel()
			}()

			watchJob(job, len(queue))

			status := job.Wait()
			for _, jobErr := range status.Errors {
				logError("%v", jobErr)
			}
			switch status.State {
			case strex.JobSucceeded:
				logSuccess("translated %d entries (%d from cache)",
					status.TranslatedEntries, status.CachedEntries)
			case strex.JobCancelled:
				logWarning("cancelled: %d of %d entries translated; re-run to continue",
					status.TranslatedEntries+status.CachedEntries, status.TotalEntries)
			default:
				logWarning("%d of %d batches failed; re-run 'strx translate' to retry the remainder",
					status.FailedBatches, status.TotalBatches)
			}
			return nil
		},
	}

	return cmd
}

// buildTranslator wires the provider, rate limiter, cache, and harvested
// reference translations from the configuration.
func buildTranslator(app *app) (*strex.Translator, error) {
	if os.Getenv("OPENAI_API_KEY") == "" && app.cfg.BaseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	var ai strex.AIProvider = provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:       app.cfg.Model,
		Temperature: app.cfg.Temperature,
		BaseURL:     app.cfg.BaseURL,
	})
	if app.cfg.RequestsPerMinute > 0 {
		ai = strex.NewRateLimitedProvider(ai, strex.RateLimitConfig{
			RequestsPerMinute: app.cfg.RequestsPerMinute,
		})
	}

	var store strex.TranslationCache
	if app.cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(app.cfg.RedisURL,
			cache.WithTTL(time.Duration(app.cfg.CacheTTLSeconds)*time.Second))
		if err != nil {
			return nil, err
		}
		store = redisCache
	} else {
		store = cache.NewMemoryCache(time.Duration(app.cfg.CacheTTLSeconds) * time.Second)
	}

	refs := harvestReferences(app)
	if len(refs) > 0 {
		logInfo("using %d existing translations as style references", len(refs))
	}

	opts := []strex.TranslatorOption{
		strex.WithSourceLang(app.cfg.SourceLang),
		strex.WithCache(store),
		strex.WithBatchSize(app.cfg.BatchSize),
		strex.WithTimeout(time.Duration(app.cfg.TimeoutSeconds) * time.Second),
		strex.WithMaxInFlight(app.cfg.MaxInFlight),
		strex.WithReferences(refs),
	}
	if app.cfg.PromptTemplate != "" {
		opts = append(opts, strex.WithPromptTemplate(app.cfg.PromptTemplate))
	}
	if app.cfg.SystemPrompt != "" {
		opts = append(opts, strex.WithSystemPrompt(app.cfg.SystemPrompt))
	}
	return strex.NewTranslator(app.cfg.TargetLang, ai, opts...), nil
}

func harvestReferences(app *app) []strex.ReferencePair {
	sc := scanner.New(scanner.Config{Root: rootDir, SourceLang: app.cfg.SourceLang})
	refs, err := sc.HarvestReferences(app.cfg.ResourcePathTemplate, app.cfg.TargetLang, app.cfg.ReferenceLimit)
	if err != nil {
		logWarning("reference harvest skipped: %v", err)
		return nil
	}
	return refs
}

// watchJob drives a progress bar off the job counters until the job ends.
func watchJob(job *strex.Job, total int) {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("translating"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-job.Done():
			_ = bar.Finish()
			return
		case <-ticker.C:
			st := job.Status()
			_ = bar.Set(st.TranslatedEntries + st.CachedEntries + st.FailedEntries)
		}
	}
}
