package option

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	ErrDuplicateKey = errors.New("option: duplicate key")
	ErrInvalidRule  = errors.New("option: invalid visibility rule")
)

// Catalog is an ordered, immutable set of option definitions. The order is
// the order in which options are loaded and committed.
type Catalog struct {
	defs  []Definition
	byKey map[Key]int
	rules map[Key]*vm.Program
}

// NewCatalog validates defs and compiles their visibility rules.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		defs:  append([]Definition(nil), defs...),
		byKey: make(map[Key]int, len(defs)),
		rules: map[Key]*vm.Program{},
	}
	for i, d := range c.defs {
		if _, ok := c.byKey[d.Key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
		}
		if d.Kind == EnumChoice {
			if d.Enum == nil {
				return nil, fmt.Errorf("option: %s: enum option without members", d.Key)
			}
			if _, ok := d.Enum.lookup(d.Default); !ok {
				return nil, fmt.Errorf("option: %s: default %q is not a member of %s", d.Key, d.Default, d.Enum.Name)
			}
		}
		c.byKey[d.Key] = i
	}

	env := c.ruleEnv(nil)
	for _, d := range c.defs {
		if d.VisibleWhen == "" {
			continue
		}
		program, err := expr.Compile(d.VisibleWhen, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, d.Key, err)
		}
		c.rules[d.Key] = program
	}
	return c, nil
}

// Definitions returns the definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Lookup returns the definition for key.
func (c *Catalog) Lookup(key Key) (Definition, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Watched returns the keys whose change invalidates the avatar cache.
func (c *Catalog) Watched() []Key {
	var keys []Key
	for _, d := range c.defs {
		if d.Effect == EffectAvatarCache {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// Visible evaluates the visibility rule of key against persisted values.
// Options without a rule are always visible.
func (c *Catalog) Visible(key Key, values map[Key]string) (bool, error) {
	program, ok := c.rules[key]
	if !ok {
		return true, nil
	}
	out, err := expr.Run(program, c.ruleEnv(values))
	if err != nil {
		return false, fmt.Errorf("option: evaluate visibility of %s: %w", key, err)
	}
	visible, _ := out.(bool)
	return visible, nil
}

func (c *Catalog) ruleEnv(values map[Key]string) map[string]any {
	env := make(map[string]any, len(c.defs))
	for _, d := range c.defs {
		v, ok := values[d.Key]
		if !ok {
			v = d.Default
		}
		env[string(d.Key)] = v
	}
	return env
}

var defaultCatalog = mustCatalog(
	Definition{Key: EnableAutoScale, Kind: Boolean, Default: "true",
		Description: "Scale the user interface with the display DPI"},
	Definition{Key: TruncatePathMethod, Kind: EnumChoice, Enum: TruncatePathMethods, Default: "None",
		Description: "How long file paths are shortened"},
	Definition{Key: ShowRepoCurrentBranch, Kind: Boolean, Default: "true",
		Description: "Show the current branch in the repository list"},
	Definition{Key: ShowCurrentBranchInVisualStudio, Kind: Boolean, Default: "true",
		Description: "Show the current branch in Visual Studio"},
	Definition{Key: ShowAuthorAvatarColumn, Kind: Boolean, Default: "true",
		Description: "Show author avatars in the revision graph"},
	Definition{Key: ShowAuthorAvatarInCommitInfo, Kind: Boolean, Default: "true",
		Description: "Show the author avatar in commit details"},
	Definition{Key: AvatarImageCacheDays, Kind: Integer, Default: "13", Min: 1, Max: 365,
		Description: "Days to keep cached avatar images"},
	Definition{Key: AvatarProvider, Kind: EnumChoice, Enum: AvatarProviders, Default: "Default",
		Effect: EffectAvatarCache, Description: "Source of user avatar images"},
	Definition{Key: AvatarFallbackType, Kind: EnumChoice, Enum: AvatarFallbackTypes, Default: "AuthorInitials",
		Effect: EffectAvatarCache, Description: "Image used when the provider has none for an address"},
	Definition{Key: CustomAvatarTemplate, Kind: FreeText, Default: "",
		Effect: EffectAvatarCache, VisibleWhen: `avatarProvider == "Custom"`,
		Description: "URL template of the custom avatar provider"},
	Definition{Key: SortByAuthorDate, Kind: Boolean, Default: "false",
		Description: "Sort revisions by author date"},
	Definition{Key: RefsSortOrder, Kind: EnumChoice, Enum: GitRefsSortOrders, Default: "Descending",
		Description: "Branch sort order"},
	Definition{Key: RefsSortBy, Kind: EnumChoice, Enum: GitRefsSortBys, Default: "Default",
		Description: "Branch sort key"},
	Definition{Key: RelativeDate, Kind: Boolean, Default: "true",
		Description: "Show relative dates"},
	Definition{Key: Translation, Kind: FreeText, Default: "English", Source: SourceTranslations,
		Effect: EffectReloadStrings, Description: "User interface language"},
	Definition{Key: Dictionary, Kind: FileBackedChoice, Default: "en-US", Source: SourceDictionaries,
		Description: "Spell-check dictionary"},
)

func mustCatalog(defs ...Definition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the appearance option catalog.
func Default() *Catalog {
	return defaultCatalog
}
