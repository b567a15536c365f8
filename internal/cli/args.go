package cli

import (
	"fmt"
	"strings"
)

// Args represents the top-level command structure
type Args struct {
	Watch      *WatchCmd      `arg:"subcommand:watch" help:"Capture clipboard changes until interrupted"`
	Store      *StoreCmd      `arg:"subcommand:store" help:"Capture text from stdin, files or the clipboard"`
	List       *ListCmd       `arg:"subcommand:list" help:"List recent clips"`
	Search     *SearchCmd     `arg:"subcommand:search" help:"Search clips by keyword or meaning"`
	Show       *ShowCmd       `arg:"subcommand:show" help:"Print a clip"`
	Copy       *CopyCmd       `arg:"subcommand:copy" help:"Copy a clip to the clipboard"`
	Delete     *DeleteCmd     `arg:"subcommand:delete" help:"Delete clips"`
	Fav        *FavCmd        `arg:"subcommand:fav" help:"Toggle favorite on a clip"`
	Pin        *PinCmd        `arg:"subcommand:pin" help:"Toggle pin on a clip"`
	Edit       *EditCmd       `arg:"subcommand:edit" help:"Edit a clip's text in $EDITOR"`
	Actions    *ActionsCmd    `arg:"subcommand:actions" help:"List or run the actions offered for a clip"`
	Tag        *TagCmd        `arg:"subcommand:tag" help:"Manage tags"`
	Collection *CollectionCmd `arg:"subcommand:collection" help:"Manage collections"`
	Embed      *EmbedCmd      `arg:"subcommand:embed" help:"Generate embeddings for semantic search"`
	Reindex    *ReindexCmd    `arg:"subcommand:reindex" help:"Rebuild the full-text search index"`
	Verify     *VerifyCmd     `arg:"subcommand:verify" help:"Check the full-text index against the clips table"`
	Clear      *ClearCmd      `arg:"subcommand:clear" help:"Delete all clips"`
	Config     *ConfigCmd     `arg:"subcommand:config" help:"Manage configuration"`
	UI         *UICmd         `arg:"subcommand:ui" help:"Browse history interactively"`

	DBPath  *string `arg:"--db" help:"Database file (overrides database_path)"`
	Verbose bool    `arg:"-v,--verbose" help:"Log debug output to stderr"`
}

// WatchCmd represents the 'clipvault watch' command
type WatchCmd struct {
	MetricsAddr string `arg:"--metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9464"`
	Embed       bool   `arg:"--embed" help:"Embed new clips as they are captured (also enabled by auto_embed)"`
}

// StoreCmd represents the 'clipvault store' command
type StoreCmd struct {
	Files     []string `arg:"positional" help:"Files to read from (optional)"`
	Clipboard bool     `arg:"-c,--clipboard" help:"Read from clipboard"`
	App       string   `arg:"--app" help:"Source application name"`
}

// ListCmd represents the 'clipvault list' command
type ListCmd struct {
	Limit     int      `arg:"-n,--limit" default:"20" help:"Number of clips to show"`
	Offset    int      `arg:"--offset" help:"Number of clips to skip"`
	Types     []string `arg:"-t,--type,separate" help:"Only show these content types"`
	Favorites bool     `arg:"-f,--favorites" help:"Only show favorites"`
	Pinned    bool     `arg:"-p,--pinned" help:"Only show pinned clips"`
	Tag       string   `arg:"--tag" help:"Only show clips with this tag"`
	In        string   `arg:"--collection" help:"Only show clips in this collection"`
}

// SearchCmd represents the 'clipvault search' command
type SearchCmd struct {
	Query     string   `arg:"positional,required" help:"Search query"`
	Limit     int      `arg:"-n,--limit" default:"20" help:"Number of results"`
	Offset    int      `arg:"--offset" help:"Number of results to skip"`
	Types     []string `arg:"-t,--type,separate" help:"Only match these content types"`
	Semantic  bool     `arg:"-s,--semantic" help:"Rank by meaning using embeddings"`
	Threshold *float64 `arg:"--threshold" help:"Minimum cosine similarity for semantic hits"`
	IDsOnly   bool     `arg:"-i,--ids" help:"Print only clip ids"`
}

// ShowCmd represents the 'clipvault show' command
type ShowCmd struct {
	ID   int64 `arg:"positional,required" help:"Clip id"`
	Info bool  `arg:"--info" help:"Print details instead of the content"`
}

// CopyCmd represents the 'clipvault copy' command
type CopyCmd struct {
	ID    int64 `arg:"positional,required" help:"Clip id"`
	Paste bool  `arg:"--paste" help:"Run paste_command after copying"`
}

// DeleteCmd represents the 'clipvault delete' command
type DeleteCmd struct {
	IDs []int64 `arg:"positional,required" help:"Clip ids"`
}

// FavCmd represents the 'clipvault fav' command
type FavCmd struct {
	ID int64 `arg:"positional,required" help:"Clip id"`
}

// PinCmd represents the 'clipvault pin' command
type PinCmd struct {
	ID int64 `arg:"positional,required" help:"Clip id"`
}

// EditCmd represents the 'clipvault edit' command
type EditCmd struct {
	ID   int64   `arg:"positional,required" help:"Clip id"`
	Text *string `arg:"--text" help:"Replace the text without opening an editor"`
}

// ActionsCmd represents the 'clipvault actions' command
type ActionsCmd struct {
	ID  int64  `arg:"positional,required" help:"Clip id"`
	Run string `arg:"-r,--run" help:"Action id to run"`
}

// TagCmd represents the 'clipvault tag' command
type TagCmd struct {
	Add    *TagAddCmd    `arg:"subcommand:add" help:"Tag a clip, creating the tag if needed"`
	Remove *TagRemoveCmd `arg:"subcommand:remove" help:"Remove a tag from a clip"`
	List   *TagListCmd   `arg:"subcommand:list" help:"List tags, or the tags of one clip"`
	Delete *TagDeleteCmd `arg:"subcommand:delete" help:"Delete a tag (clips are kept)"`
}

type TagAddCmd struct {
	ID    int64  `arg:"positional,required" help:"Clip id"`
	Name  string `arg:"positional,required" help:"Tag name"`
	Color string `arg:"--color" help:"Tag color, e.g. #ff0000"`
}

type TagRemoveCmd struct {
	ID   int64  `arg:"positional,required" help:"Clip id"`
	Name string `arg:"positional,required" help:"Tag name"`
}

type TagListCmd struct {
	ID *int64 `arg:"positional" help:"Clip id (optional)"`
}

type TagDeleteCmd struct {
	Name string `arg:"positional,required" help:"Tag name"`
}

// CollectionCmd represents the 'clipvault collection' command
type CollectionCmd struct {
	Add    *CollectionAddCmd    `arg:"subcommand:add" help:"Add a clip to a collection, creating it if needed"`
	Remove *CollectionRemoveCmd `arg:"subcommand:remove" help:"Remove a clip from a collection"`
	List   *CollectionListCmd   `arg:"subcommand:list" help:"List collections, or the collections of one clip"`
	Delete *CollectionDeleteCmd `arg:"subcommand:delete" help:"Delete a collection (clips are kept)"`
}

type CollectionAddCmd struct {
	ID          int64  `arg:"positional,required" help:"Clip id"`
	Name        string `arg:"positional,required" help:"Collection name"`
	Description string `arg:"--description" help:"Description for a new collection"`
}

type CollectionRemoveCmd struct {
	ID   int64  `arg:"positional,required" help:"Clip id"`
	Name string `arg:"positional,required" help:"Collection name"`
}

type CollectionListCmd struct {
	ID *int64 `arg:"positional" help:"Clip id (optional)"`
}

type CollectionDeleteCmd struct {
	Name string `arg:"positional,required" help:"Collection name"`
}

// EmbedCmd represents the 'clipvault embed' command
type EmbedCmd struct {
	ID    *int64 `arg:"positional" help:"Clip id (optional)"`
	Stale bool   `arg:"--stale" help:"Embed every clip whose embedding is missing or stale"`
	Limit int    `arg:"-n,--limit" default:"1000" help:"Maximum clips to embed with --stale"`
}

// ReindexCmd represents the 'clipvault reindex' command
type ReindexCmd struct{}

// VerifyCmd represents the 'clipvault verify' command
type VerifyCmd struct {
	Fix bool `arg:"--fix" help:"Rebuild the index when it has drifted"`
}

// ClearCmd represents the 'clipvault clear' command
type ClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// ConfigCmd represents the 'clipvault config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get a configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set a configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
	Path *ConfigPathCmd `arg:"subcommand:path" help:"Print the configuration file path"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

type ConfigListCmd struct{}

type ConfigPathCmd struct{}

// UICmd represents the 'clipvault ui' command
type UICmd struct {
	Query    string `arg:"positional" help:"Start in search mode with this query"`
	Semantic bool   `arg:"-s,--semantic" help:"Use semantic search in the browser"`
	Watch    bool   `arg:"-w,--watch" help:"Capture clipboard changes while the browser is open"`
}

// Description returns the program description
func (Args) Description() string {
	return "clipvault - clipboard history with full-text and semantic search"
}

// Version returns the program version
func (Args) Version() string {
	return "clipvault 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  clipvault watch                  # Capture the clipboard in the background
  clipvault                        # Interactive browser
  clipvault list -n 5              # Five most recent clips
  clipvault search "docker run"    # Keyword search
  clipvault search -s "deploy"     # Semantic search (needs embed_provider)
  clipvault copy 42                # Put clip 42 back on the clipboard
  clipvault actions 42 --run copy-rgb
  clipvault tag add 42 work
  clipvault config set history_limit 5000

Configuration: ~/.config/clipvault/config.yaml, overridden by CLIPVAULT_* variables.`
}

// HasCommand reports whether any subcommand was given.
func (args *Args) HasCommand() bool {
	return args.Watch != nil || args.Store != nil || args.List != nil || args.Search != nil ||
		args.Show != nil || args.Copy != nil || args.Delete != nil || args.Fav != nil ||
		args.Pin != nil || args.Edit != nil || args.Actions != nil || args.Tag != nil ||
		args.Collection != nil || args.Embed != nil || args.Reindex != nil || args.Verify != nil ||
		args.Clear != nil || args.Config != nil || args.UI != nil
}

// NeedsStore reports whether the command opens the database. Config
// commands work even when the database cannot be opened.
func (args *Args) NeedsStore() bool {
	return args.Config == nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.Store != nil:
		return args.Store.Validate()
	case args.List != nil:
		return validatePage(args.List.Limit, args.List.Offset)
	case args.Search != nil:
		return args.Search.Validate()
	case args.Embed != nil:
		return args.Embed.Validate()
	case args.Tag != nil:
		if args.Tag.Add == nil && args.Tag.Remove == nil && args.Tag.List == nil && args.Tag.Delete == nil {
			return fmt.Errorf("no tag subcommand specified")
		}
	case args.Collection != nil:
		c := args.Collection
		if c.Add == nil && c.Remove == nil && c.List == nil && c.Delete == nil {
			return fmt.Errorf("no collection subcommand specified")
		}
	}
	return nil
}

// Validate validates store command arguments
func (s *StoreCmd) Validate() error {
	if len(s.Files) > 0 && s.Clipboard {
		return fmt.Errorf("cannot specify both files and clipboard input")
	}
	return nil
}

// Validate validates search command arguments
func (s *SearchCmd) Validate() error {
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if s.Threshold != nil && (*s.Threshold < -1 || *s.Threshold > 1) {
		return fmt.Errorf("threshold must be between -1 and 1")
	}
	return validatePage(s.Limit, s.Offset)
}

// Validate validates embed command arguments
func (e *EmbedCmd) Validate() error {
	if e.ID == nil && !e.Stale {
		return fmt.Errorf("specify a clip id or --stale")
	}
	if e.ID != nil && e.Stale {
		return fmt.Errorf("cannot specify both a clip id and --stale")
	}
	if e.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}

func validatePage(limit, offset int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	return nil
}
