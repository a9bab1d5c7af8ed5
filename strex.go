// Package strex extracts embedded native-language string literals from
// mobile-app source trees, translates them in batches through an AI
// provider, and writes back resource files and source-code edits.
//
// The pipeline is Scanner -> Session Store -> Batcher/Translator ->
// Resource Writer + Code Rewriter:
//
//	import (
//	    strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
//	    "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/config"
//	    "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/provider"
//	    "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/scanner"
//	    "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/session"
//	)
//
//	func main() {
//	    cfg := config.Default()
//	    sc := scanner.New(scanner.Config{Root: "/path/to/project"})
//	    res, _ := sc.Scan(context.Background())
//
//	    store, _ := session.Open("/path/to/project/.strex/session.json", cfg.Snapshot())
//	    report, _ := store.Merge(res.Entries)
//	    fmt.Printf("added %d entries\n", len(report.Added))
//
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//	    t := strex.NewTranslator("en", p, strex.WithBatchSize(50))
//	    job := t.Start(context.Background(), store.Untranslated(), store.Persist)
//	    job.Wait()
//	}
//
// Entries move through the states New -> Selected -> Translated -> Saved,
// with an Ignored side branch that keeps an entry off the work queue across
// rescans until it is explicitly revived.
package strex
