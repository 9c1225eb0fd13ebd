package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"git.sr.ht/~spc/go-log"
	"github.com/urfave/cli/v2"

	"github.com/gitui/appearance/internal/choice"
	"github.com/gitui/appearance/internal/l10n"
	"github.com/gitui/appearance/internal/option"
	"github.com/gitui/appearance/internal/store"
)

var showAction = withEngine(func(c *cli.Context, e *engine) error {
	session := e.open(c.Context)
	defer session.Cancel()
	snap := session.Snapshot()

	for _, w := range snap.Warnings() {
		log.Warnf("%v", w)
	}

	for _, key := range snap.Keys() {
		def, _ := snap.Definition(key)
		value, ok, _ := snap.Value(key)
		if !ok {
			value = l10n.T("(not set)")
		}

		line := fmt.Sprintf("%-32s %s", key, value)
		if visible, err := snap.Visible(key); err == nil && !visible {
			line += " " + l10n.T("(hidden)")
		}
		fmt.Println(line)
		log.Debugf("%s: %s", key, l10n.T(def.Description))

		if ch, err := snap.Choice(key); err == nil {
			for i, label := range ch.Labels {
				marker := " "
				if i == ch.Selected {
					marker = "*"
				}
				fmt.Printf("    %s %s\n", marker, label)
			}
		}
	}
	return nil
})

var setAction = withEngine(func(c *cli.Context, e *engine) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("expected at least one KEY=VALUE argument"), 1)
	}

	session := e.open(c.Context)
	snap := session.Snapshot()
	for _, w := range snap.Warnings() {
		log.Warnf("%v", w)
	}

	assignments, err := parseAssignments(c.Args().Slice())
	if err != nil {
		_ = session.Cancel()
		return cli.Exit(err, 1)
	}
	for _, a := range assignments {
		if err := snap.Set(a.key, a.value); err != nil {
			_ = session.Cancel()
			return cli.Exit(err, 1)
		}
	}

	result, cleared, err := session.Commit(c.Context)
	if err != nil {
		if errors.Is(err, store.ErrPersistenceFailure) {
			return cli.Exit(l10n.T("settings were only partially saved: %v", err), 1)
		}
		return cli.Exit(err, 1)
	}
	log.Debugf("commit %v changed %v", result.ID, result.Changed)

	if len(result.Changed) == 0 {
		fmt.Println(l10n.T("Nothing changed."))
	} else {
		for _, key := range result.Changed {
			value, _, _ := snap.Value(key)
			fmt.Printf("%s = %s\n", key, value)
		}
	}

	if c.Bool(cliNoWait) {
		return nil
	}
	if err := await(cleared, l10n.T("Clearing avatar cache...")); err != nil {
		// Settings are already saved at this point.
		log.Warnf(l10n.T("cannot clear avatar cache: %v"), err)
	}
	return nil
})

var dictionariesAction = withEngine(func(c *cli.Context, e *engine) error {
	stored, _, err := e.store.Get(c.Context, string(option.Dictionary))
	if err != nil {
		log.Warnf("%v", err)
	}
	choices, err := e.dictionaries.ResolvePersisted(c.Context, stored)
	if err != nil {
		log.Warnf(l10n.T("No dictionary files found in: %s"), e.cfg.DictionaryDir)
	}
	printChoices(choices)
	return nil
})

var translationsAction = withEngine(func(c *cli.Context, e *engine) error {
	fmt.Println(l10n.English)
	for _, name := range e.strings.Translations() {
		fmt.Println(name)
	}
	return nil
})

var clearCacheAction = withEngine(func(c *cli.Context, e *engine) error {
	if err := await(e.cache.ClearAsync(c.Context), l10n.T("Clearing avatar cache...")); err != nil {
		e.metrics.RecordCacheClearFailure()
		return cli.Exit(err, 1)
	}
	fmt.Println(l10n.T("Avatar cache cleared."))
	return nil
})

var pruneCacheAction = withEngine(func(c *cli.Context, e *engine) error {
	session := e.open(c.Context)
	defer session.Cancel()

	days, err := session.Snapshot().Int(option.AvatarImageCacheDays)
	if err != nil {
		return cli.Exit(err, 1)
	}
	removed, err := e.cache.Prune(c.Context, time.Now(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Println(l10n.TN("Removed %d cached avatar.", "Removed %d cached avatars.", uint32(removed), removed))
	return nil
})

var importINIAction = withEngine(func(c *cli.Context, e *engine) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("expected exactly one FILE argument"), 1)
	}
	n, err := store.ImportINIFile(c.Context, c.Args().First(), e.store)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Println(l10n.TN("Imported %d setting.", "Imported %d settings.", uint32(n), n))
	return nil
})

var watchAction = withEngine(func(c *cli.Context, e *engine) error {
	session := e.open(c.Context)
	defer session.Cancel()

	list := func() {
		if ch, err := session.Snapshot().Choice(option.Dictionary); err == nil {
			fmt.Println(strings.Join(ch.Labels, " "))
		}
	}
	list()

	w := &choice.Watcher{
		Dir:      e.cfg.DictionaryDir,
		Suffix:   e.cfg.DictionarySuffix,
		Debounce: e.cfg.RescanDebounce,
	}
	log.Infof(l10n.T("watching %s, press Ctrl+C to stop"), e.cfg.DictionaryDir)
	err := w.Watch(c.Context, func() {
		if err := session.Rescan(c.Context); err != nil {
			log.Warnf("%v", err)
		}
		list()
	})
	if err != nil {
		return cli.Exit(err, 1)
	}
	return nil
})

type assignment struct {
	key   option.Key
	value string
}

// parseAssignments splits KEY=VALUE arguments at the first "=". Values may
// be empty or contain further "=" signs.
func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.New(l10n.T("invalid argument %q, expected KEY=VALUE", arg))
		}
		out = append(out, assignment{key: option.Key(key), value: value})
	}
	return out, nil
}

func printChoices(c choice.Choices) {
	for i, label := range c.Labels() {
		marker := " "
		if i == c.SelectedIndex {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, label)
	}
}
