// Package cache provides translation caching backends. Keys are built from
// the hash of the source text plus the target language, so a string that
// reappears under a new fingerprint after refactoring still hits the cache.
package cache

import (
	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// TranslationCache is re-exported so callers wiring a backend into a
// Translator only need this package.
type TranslationCache = strex.TranslationCache

// Key builds the cache key for a source text and target language.
func Key(text, targetLang string) string {
	return strex.CacheKey(strex.TextHash(text), targetLang)
}
