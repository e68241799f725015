package locale

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"npc-localizer/internal/parser"
	"npc-localizer/internal/worker"
)

// Translator resolves an NPC ID to its name in one locale. ok == false
// means the source has no result; a non-nil error is a transient failure.
// The synchronizer treats both the same way: the entry degrades to an
// inactive placeholder.
type Translator interface {
	Lookup(ctx context.Context, id int64, loc Locale) (name string, ok bool, err error)
}

// Decision is the per-(record, locale) synchronization outcome.
type Decision int

const (
	// DecisionKeep retains an existing active entry verbatim. This is
	// what preserves manual edits across reruns.
	DecisionKeep Decision = iota
	// DecisionFetch asks the translator for a name.
	DecisionFetch
	// DecisionSkip is a fetch that came back empty; the entry is written
	// commented out with the English text as fallback.
	DecisionSkip
)

// Options configures one synchronization pass. ForceAll re-fetches every
// entry, overriding Keep decisions.
type Options struct {
	ForceAll bool
	Workers  int
}

// Summary reports the outcome of a pass. Failures are per-locale fatal
// errors (filesystem problems); every other condition is a warning.
type Summary struct {
	FilesWritten []string
	Warnings     []string
	Failures     map[string]error
}

// Synchronizer merges extracted records, existing locale files, and
// fetched names into rewritten locale files.
type Synchronizer struct {
	translator Translator
	forceAll   bool
	workers    int
}

func NewSynchronizer(t Translator, opts Options) *Synchronizer {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Synchronizer{
		translator: t,
		forceAll:   opts.ForceAll,
		workers:    workers,
	}
}

// plannedEntry is one output slot. Slots are laid out in record order per
// locale before any fetch starts, so finished fetches land back in
// deterministic positions regardless of completion order.
type plannedEntry struct {
	record   parser.Record
	decision Decision
	entry    Entry
}

type localePlan struct {
	locale  Locale
	path    string
	planned []plannedEntry
}

type fetchTask struct {
	plan *localePlan
	slot int
}

type fetchResult struct {
	name string
	ok   bool
}

// Sync runs one pass over the given locales. The record sequence is
// authoritative for membership and order; existing files are
// authoritative for already-translated content. Locales fail
// independently: a filesystem error on one never stops the others.
func (s *Synchronizer) Sync(ctx context.Context, records []parser.Record, module, targetDir string, locales []Locale) *Summary {
	summary := &Summary{Failures: make(map[string]error)}

	var plans []*localePlan
	var tasks []fetchTask

	for _, loc := range locales {
		path := filepath.Join(targetDir, loc.Code+".lua")

		existing, err := ReadFile(path)
		if err != nil {
			summary.Failures[loc.Code] = err
			log.Error().Err(err).Str("locale", loc.Code).Str("path", path).Msg("Failed to read locale file")
			continue
		}

		existingByKey := make(map[string]Entry, len(existing))
		for _, e := range existing {
			if _, dup := existingByKey[e.Key]; !dup {
				existingByKey[e.Key] = e
			}
		}

		plan := &localePlan{locale: loc, path: path}
		for _, rec := range records {
			pe := plannedEntry{record: rec, decision: DecisionFetch}
			if e, ok := existingByKey[rec.Key]; ok && e.Active && !s.forceAll {
				pe.decision = DecisionKeep
				pe.entry = e
			}
			plan.planned = append(plan.planned, pe)
		}
		plans = append(plans, plan)

		for i := range plan.planned {
			if plan.planned[i].decision == DecisionFetch {
				tasks = append(tasks, fetchTask{plan: plan, slot: i})
			}
		}
	}

	if len(tasks) > 0 {
		log.Info().Int("fetches", len(tasks)).Int("locales", len(plans)).Msg("Fetching localized names")

		pool := worker.NewPool(s.workers, func(ctx context.Context, t fetchTask) (fetchResult, error) {
			slot := t.plan.planned[t.slot]
			name, ok, err := s.translator.Lookup(ctx, slot.record.ID, t.plan.locale)
			if err != nil {
				return fetchResult{}, err
			}
			return fetchResult{name: name, ok: ok}, nil
		})

		for _, res := range pool.Execute(ctx, tasks) {
			if res.Input.plan == nil {
				// Left unprocessed by cancellation.
				continue
			}
			slot := &res.Input.plan.planned[res.Input.slot]
			code := res.Input.plan.locale.Code

			switch {
			case res.Err != nil:
				slot.decision = DecisionSkip
				warning := fmt.Sprintf("[%s] lookup failed for %d (%s): %v", code, slot.record.ID, slot.record.Key, res.Err)
				summary.Warnings = append(summary.Warnings, warning)
				log.Warn().Err(res.Err).Str("locale", code).Int64("id", slot.record.ID).Msg("Lookup failed")
			case !res.Result.ok:
				slot.decision = DecisionSkip
				warning := fmt.Sprintf("[%s] no result for %d (%s)", code, slot.record.ID, slot.record.Key)
				summary.Warnings = append(summary.Warnings, warning)
				log.Warn().Str("locale", code).Int64("id", slot.record.ID).Str("key", slot.record.Key).Msg("No result")
			default:
				slot.entry = Entry{Key: slot.record.Key, Text: res.Result.name, Active: true}
			}

			if slot.decision == DecisionSkip {
				slot.entry = Entry{Key: slot.record.Key, Text: slot.record.Text, Active: false}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		// Do not write partial results on cancellation.
		for _, plan := range plans {
			summary.Failures[plan.locale.Code] = err
		}
		return summary
	}

	for _, plan := range plans {
		entries := make([]Entry, len(plan.planned))
		for i, pe := range plan.planned {
			entries[i] = pe.entry
		}

		if err := WriteFile(plan.path, plan.locale.Header(module), entries); err != nil {
			summary.Failures[plan.locale.Code] = err
			log.Error().Err(err).Str("locale", plan.locale.Code).Str("path", plan.path).Msg("Failed to write locale file")
			continue
		}

		summary.FilesWritten = append(summary.FilesWritten, plan.path)
		log.Info().Str("locale", plan.locale.Code).Str("path", plan.path).Int("entries", len(entries)).Msg("Locale file written")
	}

	return summary
}
