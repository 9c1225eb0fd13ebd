package store

import (
	"context"
	"fmt"
	"os"

	"git.sr.ht/~spc/go-ini"

	"github.com/gitui/appearance/internal/option"
)

// legacySettings is the [appearance] section of settings files written by
// older releases.
type legacySettings struct {
	Appearance struct {
		EnableAutoScale                 string `ini:"EnableAutoScale"`
		TruncatePathMethod              string `ini:"TruncatePathMethod"`
		ShowRepoCurrentBranch           string `ini:"ShowRepoCurrentBranch"`
		ShowCurrentBranchInVisualStudio string `ini:"ShowCurrentBranchInVisualStudio"`
		ShowAuthorAvatarColumn          string `ini:"ShowAuthorAvatarColumn"`
		ShowAuthorAvatarInCommitInfo    string `ini:"ShowAuthorAvatarInCommitInfo"`
		AvatarImageCacheDays            string `ini:"AvatarImageCacheDays"`
		AvatarProvider                  string `ini:"AvatarProvider"`
		AvatarFallbackType              string `ini:"AvatarFallbackType"`
		CustomAvatarTemplate            string `ini:"CustomAvatarTemplate"`
		SortByAuthorDate                string `ini:"SortByAuthorDate"`
		RefsSortOrder                   string `ini:"RefsSortOrder"`
		RefsSortBy                      string `ini:"RefsSortBy"`
		RelativeDate                    string `ini:"RelativeDate"`
		Translation                     string `ini:"Translation"`
		Dictionary                      string `ini:"Dictionary"`
	} `ini:"appearance"`
}

func (l legacySettings) pairs() [][2]string {
	a := l.Appearance
	return [][2]string{
		{string(option.EnableAutoScale), a.EnableAutoScale},
		{string(option.TruncatePathMethod), a.TruncatePathMethod},
		{string(option.ShowRepoCurrentBranch), a.ShowRepoCurrentBranch},
		{string(option.ShowCurrentBranchInVisualStudio), a.ShowCurrentBranchInVisualStudio},
		{string(option.ShowAuthorAvatarColumn), a.ShowAuthorAvatarColumn},
		{string(option.ShowAuthorAvatarInCommitInfo), a.ShowAuthorAvatarInCommitInfo},
		{string(option.AvatarImageCacheDays), a.AvatarImageCacheDays},
		{string(option.AvatarProvider), a.AvatarProvider},
		{string(option.AvatarFallbackType), a.AvatarFallbackType},
		{string(option.CustomAvatarTemplate), a.CustomAvatarTemplate},
		{string(option.SortByAuthorDate), a.SortByAuthorDate},
		{string(option.RefsSortOrder), a.RefsSortOrder},
		{string(option.RefsSortBy), a.RefsSortBy},
		{string(option.RelativeDate), a.RelativeDate},
		{string(option.Translation), a.Translation},
		{string(option.Dictionary), a.Dictionary},
	}
}

// ImportINI copies the non-empty values of a legacy INI settings document
// into dst and returns the number of keys written. Values are copied
// verbatim; normalization happens when they are next loaded.
func ImportINI(ctx context.Context, data []byte, dst Store) (int, error) {
	var legacy legacySettings
	if err := ini.Unmarshal(data, &legacy); err != nil {
		return 0, fmt.Errorf("failed to parse legacy settings: %w", err)
	}

	n := 0
	for _, kv := range legacy.pairs() {
		if kv[1] == "" {
			continue
		}
		if err := dst.Set(ctx, kv[0], kv[1]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ImportINIFile is ImportINI for a file on disk.
func ImportINIFile(ctx context.Context, path string, dst Store) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ImportINI(ctx, data, dst)
}
