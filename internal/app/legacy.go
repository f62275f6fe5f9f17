package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"cookoff-scoreboard/internal/domain"
)

// PurgeLegacy removes roster keys left behind by the build where judges could
// edit participants and challenges. The classification is a heuristic, so
// every decision is logged. It is idempotent and never fails; it returns the
// number of keys removed.
func PurgeLegacy(ctx context.Context, store DurableStore, logger *slog.Logger, metrics *Metrics) int {
	if logger == nil {
		logger = slog.Default()
	}
	removed := 0

	// The current build never writes the challenge roster, so anything here is stale.
	if _, found, err := store.Get(ctx, LegacyChallengesKey); err != nil {
		logger.Warn("legacy purge: read failed", "key", LegacyChallengesKey, "error", err)
	} else if found && deleteLegacy(ctx, store, logger, metrics, LegacyChallengesKey, "obsolete challenge roster") {
		removed++
	}

	raw, found, err := store.Get(ctx, LegacyParticipantsKey)
	switch {
	case err != nil:
		logger.Warn("legacy purge: read failed", "key", LegacyParticipantsKey, "error", err)
	case !found:
	default:
		legacy, reason := legacyParticipants(raw)
		if !legacy {
			logger.Info("legacy purge: keeping key", "key", LegacyParticipantsKey, "reason", reason)
			break
		}
		if deleteLegacy(ctx, store, logger, metrics, LegacyParticipantsKey, reason) {
			removed++
		}
	}
	return removed
}

func deleteLegacy(ctx context.Context, store DurableStore, logger *slog.Logger, metrics *Metrics, key, reason string) bool {
	if err := store.Delete(ctx, key); err != nil {
		metrics.storageFailure(domain.StorageDelete)
		logger.Warn("legacy purge: delete failed", "key", key, "error", err)
		return false
	}
	metrics.purged()
	logger.Info("legacy purge: removed key", "key", key, "reason", reason)
	return true
}

// legacyParticipants reports whether a stored participant roster has the
// user-edited shape: a non-empty array whose first id lacks the fixed prefix.
func legacyParticipants(raw []byte) (bool, string) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		var anything any
		if json.Unmarshal(raw, &anything) != nil {
			return true, "unparseable roster"
		}
		return false, "not an array of objects"
	}
	if len(items) == 0 {
		return false, "empty roster"
	}
	id, _ := items[0]["id"].(string)
	if strings.HasPrefix(id, domain.ParticipantIDPrefix) {
		return false, "ids follow the fixed naming convention"
	}
	return true, "user-edited roster"
}
