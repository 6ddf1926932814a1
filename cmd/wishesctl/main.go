// Command wishesctl inspects and prunes the wishes document directly, using
// the same STORE_BACKEND settings as the service.
//
//	wishesctl list
//	wishesctl delete -id 7
//	wishesctl export > wishes.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/trian/landing/backend/wishes-service/internal/config"
	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/internal/wish/repository"
	"github.com/trian/landing/backend/wishes-service/internal/wish/service"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rc := repository.NewRedisClient(cfg)
	if rc != nil {
		defer func() { _ = rc.Close() }()
	}
	repo, closeRepo, err := repository.Open(ctx, cfg, rc)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer closeRepo()

	loc, _ := time.LoadLocation(cfg.Wish.Timezone)
	svc := service.New(repo, service.Options{
		Title:        cfg.Wish.Title,
		Location:     loc,
		Lock:         true,
		StrictWrites: true,
	})

	switch os.Args[1] {
	case "list":
		printTable(os.Stdout, svc.List(ctx))
	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		id := fs.Int("id", 0, "id of the wish to remove")
		_ = fs.Parse(os.Args[2:])
		if err := svc.Delete(ctx, *id); err != nil {
			logger.Fatalf("delete %d: %v", *id, err)
		}
		color.Green.Printf("deleted wish %d\n", *id)
	case "export":
		b, err := svc.Snapshot(ctx)
		if err != nil {
			logger.Fatalf("export: %v", err)
		}
		_, _ = os.Stdout.Write(append(b, '\n'))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wishesctl list | delete -id N | export")
}

func printTable(w io.Writer, wishes []wish.Wish) {
	header := fmt.Sprintf(" %d wishes ", len(wishes))
	fmt.Fprintln(w, color.New(color.BgBlack, color.FgGreen).Render(header))
	if len(wishes) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Date", "Author", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, x := range wishes {
		table.Append([]string{strconv.Itoa(x.ID), x.Date, x.Author, truncate(x.Content, 60)})
	}
	table.Render()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
