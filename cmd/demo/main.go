// Command demo walks an in-memory history through capture, browsing,
// smart actions and search without touching the real clipboard.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yiblet/clipvault/internal/action"
	"github.com/yiblet/clipvault/internal/capture"
	"github.com/yiblet/clipvault/internal/clipboard/mockboard"
	"github.com/yiblet/clipvault/internal/content"
	"github.com/yiblet/clipvault/internal/embedding"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/logger"
	"github.com/yiblet/clipvault/internal/search"
	"github.com/yiblet/clipvault/internal/service"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/memstore"
)

func main() {
	ctx := context.Background()
	fmt.Println("clipvault demo")

	log, err := logger.Init(os.Getenv("CLIPVAULT_LOG_LEVEL"), nil)
	if err != nil {
		log.Warn().Err(err).Msg("using default log level")
	}

	st, err := memstore.NewMemoryStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create store")
	}
	board := mockboard.New()
	svc := service.New(st,
		service.WithClipboard(board),
		service.WithEmbedder(embedding.NewHashEmbedder(256)),
		service.WithSearchOptions(search.WithMode(search.ModeHybrid)),
		service.WithLogger(log),
	)
	defer svc.Close()

	samples := []string{
		"Meeting notes: ship the sync fix before Friday",
		"https://pkg.go.dev/github.com/rs/zerolog",
		"#ff8800",
		"jane.doe@example.com",
		"package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}",
		"name,qty\napples,3\npears,5",
		"12 * (3 + 4)",
		"Meeting notes: ship the sync fix before Friday",
	}

	fmt.Println("\nCapturing:")
	for _, text := range samples {
		res, err := svc.Capture(ctx, &store.CaptureInput{ContentType: store.ContentText, ContentText: text, AppName: "demo"})
		if err != nil {
			log.Fatal().Err(err).Msg("capture failed")
		}
		verb := "stored"
		if res.Duplicate {
			verb = "bumped"
		}
		fmt.Printf("  #%d %-7s %-6s %s\n", res.Clip.ID, verb, res.Clip.DetectedType, capture.ClipLabel(res.Clip, 50))
	}

	done, failed, err := svc.GenerateStaleEmbeddings(ctx, 100)
	if err != nil {
		log.Fatal().Err(err).Msg("embedding failed")
	}
	fmt.Printf("\nEmbedded %d clips (%d failed)\n", done, failed)

	hist := history.New(svc, history.WithPageSize(3))
	if err := hist.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("refresh failed")
	}
	for {
		more, err := hist.LoadMore(ctx, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("load failed")
		}
		if !more {
			break
		}
	}
	state := hist.Snapshot()
	fmt.Printf("\nHistory (%d clips, pages of 3):\n", len(state.Clips))

	registry := action.NewRegistry(svc, action.WithLogger(log))
	for _, clip := range state.Clips {
		c := content.ClipToContent(clip)
		var ids []string
		for _, a := range registry.Grouped(c).Smart {
			ids = append(ids, a.ID)
		}
		fmt.Printf("  #%d %-6s actions: %s\n", clip.ID, c.Type, strings.Join(ids, ", "))
	}

	fmt.Println("\nRunning smart actions:")
	for _, clip := range state.Clips {
		c := content.ClipToContent(clip)
		// only the copy actions; the rest launch external programs
		for _, a := range registry.Grouped(c).Smart {
			if !strings.HasPrefix(a.ID, "copy-") || a.ID == "copy-and-delete" {
				continue
			}
			res := <-registry.Go(ctx, a.ID, c)
			if !res.OK() {
				fmt.Printf("  %-22s failed: %v\n", a.ID, res.Err)
				break
			}
			writes := board.Writes()
			fmt.Printf("  %-22s -> %q\n", a.ID, writes[len(writes)-1])
			break
		}
	}

	fmt.Println("\nSearching:")
	for _, q := range []string{"meeting", "zerolog", "apples"} {
		hits, err := svc.Search(ctx, &search.Request{Query: q, Limit: 3})
		if err != nil {
			log.Fatal().Err(err).Msg("search failed")
		}
		fmt.Printf("  %-8s", q)
		for _, h := range hits {
			fmt.Printf(" #%d(%.2f)", h.Clip.ID, h.Score)
		}
		fmt.Println()
	}
}
