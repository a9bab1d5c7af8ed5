// Package provider defines the AI provider interface and implementations.
package provider

import strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"

// AIProvider is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type AIProvider = strex.AIProvider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = strex.TranslateRequest

// TranslateItem is an alias to the main package type.
type TranslateItem = strex.TranslateItem

// TranslationResult is an alias to the main package type.
type TranslationResult = strex.TranslationResult
