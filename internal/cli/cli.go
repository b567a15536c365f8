package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/capture"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/clipboard/sysboard"
	"github.com/yiblet/clipvault/internal/config"
	"github.com/yiblet/clipvault/internal/content"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/logger"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/service"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/tui"
)

// labelWidth is the preview width used in listings.
const labelWidth = 60

// CLI handles the command-line interface
type CLI struct {
	svc      *service.Service
	cfg      *config.Config
	cm       *config.ConfigManager
	registry *action.Registry
	log      zerolog.Logger

	in  io.Reader
	out io.Writer
}

// NewWithArgs loads the configuration, sets up logging and, unless the
// command only touches configuration, opens the database.
func NewWithArgs(args *Args) (*CLI, error) {
	cm, err := config.NewConfigManager()
	if err != nil {
		return nil, err
	}
	cfg, err := cm.Load()
	if err != nil {
		if args == nil || args.NeedsStore() {
			return nil, err
		}
		// Let "config set" repair a broken file.
		cfg = config.DefaultConfig()
	}
	if args != nil && args.DBPath != nil {
		cfg.DatabasePath = *args.DBPath
	}

	level := cfg.LogLevel
	if args != nil && args.Verbose {
		level = "debug"
	}
	log, err := logger.Init(level, os.Stderr)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to default log level")
	}

	c := &CLI{cfg: cfg, cm: cm, log: log, in: os.Stdin, out: os.Stdout}
	if args != nil && !args.NeedsStore() {
		return c, nil
	}

	svc, err := service.Open(cfg, sysboard.New(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open clip store: %w", err)
	}
	c.svc = svc
	c.registry = action.NewRegistry(svc, action.WithLogger(log))
	return c, nil
}

// NewWithService builds a CLI over an existing service, reading from in and
// writing to out.
func NewWithService(svc *service.Service, cfg *config.Config, cm *config.ConfigManager, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		svc:      svc,
		cfg:      cfg,
		cm:       cm,
		registry: action.NewRegistry(svc),
		log:      zerolog.Nop(),
		in:       in,
		out:      out,
	}
}

// Close releases the database.
func (c *CLI) Close() error {
	if c.svc == nil {
		return nil
	}
	return c.svc.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Watch != nil:
		return c.executeWatch(ctx, args.Watch)
	case args.Store != nil:
		return c.executeStore(ctx, args.Store)
	case args.List != nil:
		return c.executeList(ctx, args.List)
	case args.Search != nil:
		return c.executeSearch(ctx, args.Search)
	case args.Show != nil:
		return c.executeShow(ctx, args.Show)
	case args.Copy != nil:
		return c.executeCopy(ctx, args.Copy)
	case args.Delete != nil:
		return c.executeDelete(ctx, args.Delete)
	case args.Fav != nil:
		return c.executeToggle(ctx, args.Fav.ID, "favorite", c.svc.ToggleFavorite)
	case args.Pin != nil:
		return c.executeToggle(ctx, args.Pin.ID, "pinned", c.svc.TogglePin)
	case args.Edit != nil:
		return c.executeEdit(ctx, args.Edit)
	case args.Actions != nil:
		return c.executeActions(ctx, args.Actions)
	case args.Tag != nil:
		return c.executeTag(ctx, args.Tag)
	case args.Collection != nil:
		return c.executeCollection(ctx, args.Collection)
	case args.Embed != nil:
		return c.executeEmbed(ctx, args.Embed)
	case args.Reindex != nil:
		return c.executeReindex(ctx)
	case args.Verify != nil:
		return c.executeVerify(ctx, args.Verify)
	case args.Clear != nil:
		return c.executeClear(ctx, args.Clear)
	case args.UI != nil:
		return c.launchTUI(ctx, args.UI)
	default:
		return c.launchTUI(ctx, &UICmd{})
	}
}

// executeWatch handles the 'clipvault watch' command
func (c *CLI) executeWatch(ctx context.Context, cmd *WatchCmd) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.MetricsAddr != "" {
		srv := &http.Server{Addr: cmd.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.log.Error().Err(err).Str("addr", cmd.MetricsAddr).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		c.log.Info().Str("addr", cmd.MetricsAddr).Msg("serving metrics")
	}

	if cmd.Embed || c.cfg.AutoEmbed {
		done, err := c.svc.StartEmbedWorker(ctx)
		if err != nil {
			return err
		}
		defer func() { <-done }()
	}

	fmt.Fprintf(c.out, "Watching clipboard (history limit %d). Press Ctrl+C to stop.\n", c.svc.Capturer().HistoryLimit())
	return c.svc.Watch(ctx)
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// executeStore handles the 'clipvault store' command
func (c *CLI) executeStore(ctx context.Context, cmd *StoreCmd) error {
	switch {
	case cmd.Clipboard:
		board := c.svc.Clipboard()
		if board == nil {
			return service.ErrNoClipboard
		}
		p, err := board.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
		res, err := c.svc.Capturer().CapturePayload(ctx, p, cmd.App)
		if err != nil {
			return fmt.Errorf("failed to store content: %w", err)
		}
		c.printStored(res, "")
		return nil

	case len(cmd.Files) > 0:
		for _, filename := range cmd.Files {
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", filename, err)
			}
			res, err := c.svc.Capturer().CapturePayload(ctx, clipboard.Payload{Format: clipboard.FormatText, Data: data}, cmd.App)
			if err != nil {
				return fmt.Errorf("failed to store content from %s: %w", filename, err)
			}
			c.printStored(res, filename)
		}
		return nil

	default:
		data, err := io.ReadAll(c.in)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("no input provided")
		}
		res, err := c.svc.Capturer().CapturePayload(ctx, clipboard.Payload{Format: clipboard.FormatText, Data: data}, cmd.App)
		if err != nil {
			return fmt.Errorf("failed to store content: %w", err)
		}
		c.printStored(res, "")
		return nil
	}
}

func (c *CLI) printStored(res *store.CaptureResult, from string) {
	verb := "Stored"
	if res.Duplicate {
		verb = "Bumped"
	}
	if from != "" {
		verb += " from " + from
	}
	fmt.Fprintf(c.out, "%s #%d: %s\n", verb, res.Clip.ID, capture.ClipLabel(res.Clip, labelWidth))
}

// executeList handles the 'clipvault list' command
func (c *CLI) executeList(ctx context.Context, cmd *ListCmd) error {
	var (
		clips []*store.Clip
		err   error
	)
	switch {
	case cmd.Tag != "":
		clips, err = c.svc.ClipsWithTag(ctx, cmd.Tag, cmd.Limit, cmd.Offset)
	case cmd.In != "":
		clips, err = c.svc.ClipsInCollection(ctx, cmd.In, cmd.Limit, cmd.Offset)
	default:
		var types []store.ContentType
		types, err = parseTypes(cmd.Types)
		if err != nil {
			return err
		}
		clips, err = c.svc.ListClips(ctx, &store.ListQuery{
			Limit:         cmd.Limit,
			Offset:        cmd.Offset,
			ContentTypes:  types,
			FavoritesOnly: cmd.Favorites,
			PinnedOnly:    cmd.Pinned,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to list clips: %w", err)
	}

	if len(clips) == 0 {
		fmt.Fprintln(c.out, "History is empty!")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "To add clips:")
		fmt.Fprintln(c.out, "  clipvault watch                # capture the clipboard")
		fmt.Fprintln(c.out, "  echo \"Hello World\" | clipvault store")
		return nil
	}
	c.printClips(clips, nil)
	return nil
}

// executeSearch handles the 'clipvault search' command
func (c *CLI) executeSearch(ctx context.Context, cmd *SearchCmd) error {
	types, err := parseTypes(cmd.Types)
	if err != nil {
		return err
	}
	if cmd.Semantic && !c.svc.SemanticAvailable() {
		c.log.Warn().Msg("semantic search unavailable, using keyword search")
	}
	hits, err := c.svc.Search(ctx, &search.Request{
		Query:        cmd.Query,
		ContentTypes: types,
		Limit:        cmd.Limit,
		Offset:       cmd.Offset,
		Semantic:     cmd.Semantic,
		Threshold:    cmd.Threshold,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(hits) == 0 {
		return fmt.Errorf("no matches found for: %s", cmd.Query)
	}

	if cmd.IDsOnly {
		for _, h := range hits {
			fmt.Fprintf(c.out, "%d\n", h.Clip.ID)
		}
		return nil
	}
	clips := make([]*store.Clip, len(hits))
	scores := make([]float64, len(hits))
	for i, h := range hits {
		clips[i] = h.Clip
		scores[i] = h.Score
	}
	c.printClips(clips, scores)
	return nil
}

// printClips writes one line per clip: id, flags, type, age and label.
func (c *CLI) printClips(clips []*store.Clip, scores []float64) {
	now := time.Now()
	for i, clip := range clips {
		flags := []byte("  ")
		if clip.IsPinned {
			flags[0] = '^'
		}
		if clip.IsFavorite {
			flags[1] = '*'
		}
		line := fmt.Sprintf("%6d %s %-9s %5s  %s", clip.ID, flags, content.ClipToContent(clip).Type, age(now, clip.UpdatedAt), capture.ClipLabel(clip, labelWidth))
		if scores != nil {
			line = fmt.Sprintf("%s  (%.3f)", line, scores[i])
		}
		fmt.Fprintln(c.out, line)
	}
}

// age renders a compact relative time such as 5m or 3d.
func age(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dy", int(d.Hours()/(24*365)))
	}
}

func parseTypes(names []string) ([]store.ContentType, error) {
	var out []store.ContentType
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			t := store.ContentType(strings.ToLower(strings.TrimSpace(part)))
			if t == "" {
				continue
			}
			if !t.Valid() {
				return nil, fmt.Errorf("unknown content type %q", part)
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// executeShow handles the 'clipvault show' command
func (c *CLI) executeShow(ctx context.Context, cmd *ShowCmd) error {
	clip, err := c.svc.GetClip(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !cmd.Info {
		switch clip.ContentType {
		case store.ContentImage:
			fmt.Fprintln(c.out, clip.ImagePath)
		case store.ContentFiles:
			fmt.Fprintln(c.out, strings.Join(clip.FilePaths, "\n"))
		default:
			fmt.Fprint(c.out, clip.ContentText)
			if !strings.HasSuffix(clip.ContentText, "\n") {
				fmt.Fprintln(c.out)
			}
		}
		return nil
	}

	ct := content.ClipToContent(clip)
	fmt.Fprintf(c.out, "id:           %d\n", clip.ID)
	fmt.Fprintf(c.out, "type:         %s (%s)\n", ct.Type, clip.ContentType)
	fmt.Fprintf(c.out, "created:      %s\n", clip.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(c.out, "updated:      %s\n", clip.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(c.out, "uses:         %d\n", clip.AccessCount)
	fmt.Fprintf(c.out, "favorite:     %t\n", clip.IsFavorite)
	fmt.Fprintf(c.out, "pinned:       %t\n", clip.IsPinned)
	if clip.AppName != "" {
		fmt.Fprintf(c.out, "app:          %s\n", clip.AppName)
	}
	if clip.Metadata != "" {
		fmt.Fprintf(c.out, "metadata:     %s\n", clip.Metadata)
	}
	if tags, err := c.svc.TagsForClip(ctx, clip.ID); err == nil && len(tags) > 0 {
		fmt.Fprintf(c.out, "tags:         %s\n", joinNames(tags, func(t *store.Tag) string { return t.Name }))
	}
	if cols, err := c.svc.CollectionsForClip(ctx, clip.ID); err == nil && len(cols) > 0 {
		fmt.Fprintf(c.out, "collections:  %s\n", joinNames(cols, func(c *store.Collection) string { return c.Name }))
	}
	fmt.Fprintf(c.out, "preview:      %s\n", capture.ClipLabel(clip, labelWidth))
	return nil
}

func joinNames[T any](items []T, name func(T) string) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = name(it)
	}
	return strings.Join(names, ", ")
}

// executeCopy handles the 'clipvault copy' command
func (c *CLI) executeCopy(ctx context.Context, cmd *CopyCmd) error {
	clip, err := c.svc.GetClip(ctx, cmd.ID)
	if err != nil {
		return err
	}
	text := clip.ContentText
	if clip.ContentType == store.ContentImage {
		text = clip.ImagePath
	}
	if cmd.Paste {
		err = c.svc.Paste(ctx, text, clip.ID)
	} else {
		err = c.svc.Copy(ctx, text, clip.ID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Copied to clipboard: %s\n", capture.Truncate(capture.Sanitize(text), 80))
	return nil
}

// executeDelete handles the 'clipvault delete' command
func (c *CLI) executeDelete(ctx context.Context, cmd *DeleteCmd) error {
	var errs []error
	for _, id := range cmd.IDs {
		if err := c.svc.DeleteClip(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("clip %d: %w", id, err))
			continue
		}
		fmt.Fprintf(c.out, "Deleted #%d\n", id)
	}
	return errors.Join(errs...)
}

func (c *CLI) executeToggle(ctx context.Context, id int64, what string, toggle func(context.Context, int64) (bool, error)) error {
	on, err := toggle(ctx, id)
	if err != nil {
		return err
	}
	state := "no longer " + what
	if on {
		state = "now " + what
	}
	fmt.Fprintf(c.out, "Clip #%d is %s\n", id, state)
	return nil
}

// executeEdit handles the 'clipvault edit' command
func (c *CLI) executeEdit(ctx context.Context, cmd *EditCmd) error {
	if cmd.Text != nil {
		clip, err := c.svc.UpdateClipText(ctx, cmd.ID, *cmd.Text)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Updated #%d: %s\n", clip.ID, capture.ClipLabel(clip, labelWidth))
		return nil
	}
	return c.svc.EditClip(ctx, cmd.ID)
}

// executeActions handles the 'clipvault actions' command
func (c *CLI) executeActions(ctx context.Context, cmd *ActionsCmd) error {
	clip, err := c.svc.GetClip(ctx, cmd.ID)
	if err != nil {
		return err
	}
	ct := content.ClipToContent(clip)

	if cmd.Run != "" {
		res := c.registry.Execute(ctx, cmd.Run, ct)
		if !res.OK() {
			return res.Err
		}
		fmt.Fprintf(c.out, "Ran %s on #%d\n", cmd.Run, clip.ID)
		return nil
	}

	g := c.registry.Grouped(ct)
	for _, group := range []struct {
		name    string
		actions []action.SmartAction
	}{{"smart", g.Smart}, {"standard", g.Standard}, {"meta", g.Meta}} {
		if len(group.actions) == 0 {
			continue
		}
		fmt.Fprintf(c.out, "%s:\n", group.name)
		for _, a := range group.actions {
			mark := " "
			if a.Active(ct) {
				mark = "*"
			}
			fmt.Fprintf(c.out, "  %s %-22s %s\n", mark, a.ID, a.Label)
		}
	}
	return nil
}

// executeTag handles the 'clipvault tag' command
func (c *CLI) executeTag(ctx context.Context, cmd *TagCmd) error {
	switch {
	case cmd.Add != nil:
		tag, err := c.svc.TagClip(ctx, cmd.Add.ID, cmd.Add.Name, cmd.Add.Color)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Tagged #%d with %s\n", cmd.Add.ID, tag.Name)
	case cmd.Remove != nil:
		if err := c.svc.UntagClip(ctx, cmd.Remove.ID, cmd.Remove.Name); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed %s from #%d\n", cmd.Remove.Name, cmd.Remove.ID)
	case cmd.Delete != nil:
		if err := c.svc.DeleteTag(ctx, cmd.Delete.Name); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted tag %s\n", cmd.Delete.Name)
	case cmd.List != nil:
		var (
			tags []*store.Tag
			err  error
		)
		if cmd.List.ID != nil {
			tags, err = c.svc.TagsForClip(ctx, *cmd.List.ID)
		} else {
			tags, err = c.svc.ListTags(ctx)
		}
		if err != nil {
			return err
		}
		for _, t := range tags {
			if t.Color != "" {
				fmt.Fprintf(c.out, "%s (%s)\n", t.Name, t.Color)
			} else {
				fmt.Fprintln(c.out, t.Name)
			}
		}
	}
	return nil
}

// executeCollection handles the 'clipvault collection' command
func (c *CLI) executeCollection(ctx context.Context, cmd *CollectionCmd) error {
	switch {
	case cmd.Add != nil:
		col, err := c.svc.AddToCollection(ctx, cmd.Add.ID, cmd.Add.Name, cmd.Add.Description)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Added #%d to %s\n", cmd.Add.ID, col.Name)
	case cmd.Remove != nil:
		if err := c.svc.RemoveFromCollection(ctx, cmd.Remove.ID, cmd.Remove.Name); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed #%d from %s\n", cmd.Remove.ID, cmd.Remove.Name)
	case cmd.Delete != nil:
		if err := c.svc.DeleteCollection(ctx, cmd.Delete.Name); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted collection %s\n", cmd.Delete.Name)
	case cmd.List != nil:
		var (
			cols []*store.Collection
			err  error
		)
		if cmd.List.ID != nil {
			cols, err = c.svc.CollectionsForClip(ctx, *cmd.List.ID)
		} else {
			cols, err = c.svc.ListCollections(ctx)
		}
		if err != nil {
			return err
		}
		for _, col := range cols {
			if col.Description != "" {
				fmt.Fprintf(c.out, "%s - %s\n", col.Name, col.Description)
			} else {
				fmt.Fprintln(c.out, col.Name)
			}
		}
	}
	return nil
}

// executeEmbed handles the 'clipvault embed' command
func (c *CLI) executeEmbed(ctx context.Context, cmd *EmbedCmd) error {
	if cmd.Stale {
		done, failed, err := c.svc.GenerateStaleEmbeddings(ctx, cmd.Limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Embedded %d clip(s), %d failed.\n", done, failed)
		return nil
	}
	outcome, err := c.svc.GenerateEmbedding(ctx, *cmd.ID)
	if err != nil {
		return err
	}
	switch outcome {
	case embedding.Fresh:
		fmt.Fprintf(c.out, "Embedding for #%d is up to date.\n", *cmd.ID)
	case embedding.Skipped:
		fmt.Fprintf(c.out, "Clip #%d has no text to embed.\n", *cmd.ID)
	default:
		fmt.Fprintf(c.out, "Embedded #%d.\n", *cmd.ID)
	}
	return nil
}

// executeReindex handles the 'clipvault reindex' command
func (c *CLI) executeReindex(ctx context.Context) error {
	if err := c.svc.Reindex(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	fmt.Fprintln(c.out, "Search index rebuilt.")
	return nil
}

// executeVerify handles the 'clipvault verify' command
func (c *CLI) executeVerify(ctx context.Context, cmd *VerifyCmd) error {
	err := c.svc.VerifyIndex(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Search index is consistent.")
		return nil
	case errors.Is(err, store.ErrIndexDrift) && cmd.Fix:
		fmt.Fprintf(c.out, "Search index drifted (%v), rebuilding.\n", err)
		return c.executeReindex(ctx)
	case errors.Is(err, store.ErrIndexDrift):
		return fmt.Errorf("%w; run 'clipvault reindex' or 'clipvault verify --fix'", err)
	default:
		return err
	}
}

// executeClear handles the 'clipvault clear' command
func (c *CLI) executeClear(ctx context.Context, cmd *ClearCmd) error {
	count, err := c.svc.Store().Clips().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count clips: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(c.out, "History is already empty.")
		return nil
	}

	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete %d clip(s) from history. Continue? [y/N]: ", count)
		response, _ := bufio.NewReader(c.in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	if err := c.svc.ClearAllClips(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintf(c.out, "Cleared %d clip(s) from history.\n", count)
	return nil
}

// executeConfig handles the 'clipvault config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.cm.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
	case cmd.Set != nil:
		if err := c.cm.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
	case cmd.List != nil:
		values, err := c.cm.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(c.out, "Current configuration:")
		for _, k := range keys {
			fmt.Fprintf(c.out, "  %s = %s\n", k, values[k])
		}
	case cmd.Path != nil:
		fmt.Fprintln(c.out, c.cm.GetConfigPath())
	default:
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}

// launchTUI starts the interactive browser
func (c *CLI) launchTUI(ctx context.Context, cmd *UICmd) error {
	policy, err := history.ParseRecapturePolicy(c.cfg.RecapturePolicy)
	if err != nil {
		return err
	}
	return tui.Run(ctx, c.svc, tui.Options{
		PageSize:        c.cfg.PageSize,
		RecapturePolicy: policy,
		Query:           cmd.Query,
		Semantic:        cmd.Semantic,
		Watch:           cmd.Watch,
		Logger:          c.log,
	})
}
