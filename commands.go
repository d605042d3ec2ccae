package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"tweet_curator/catalog"
	"tweet_curator/dataset"
	"tweet_curator/generator"
	"tweet_curator/history"
	"tweet_curator/models"
	"tweet_curator/publisher"
	"tweet_curator/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		srv, err := server.New(server.Deps{
			Pipeline:  a.pipeline,
			Contexts:  a.contexts,
			Prompts:   a.prompts,
			Items:     a.items,
			History:   a.history,
			Publisher: a.publisher,
			Auth:      a.cfg.Auth,
			Log:       a.log,
		})
		if err != nil {
			return err
		}
		addr := a.cfg.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx, addr) })
		if a.cfg.Data.WatchCatalogs {
			for _, c := range []*catalog.Catalog{a.contexts, a.prompts} {
				w := catalog.NewWatcher(c, catalog.OnReload(func(n int) {
					a.log.Info("catalog reloaded", "catalog", c.Name(), "count", n)
				}))
				g.Go(func() error { return w.Run(gctx) })
			}
		}
		return g.Wait()
	},
}

var (
	genInstruction string
	genPrompt      string
	genTags        []string
	genItems       []string
	genHTML        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation from the command line",
	Long: `Assembles a prompt from an instruction (or a named prompt), context tags and
item texts, runs it through the model and prints the ordered result.

Example:
  curator generate --prompt launch --tag brand --item "We shipped v2" --item "Thanks all"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		instruction := genInstruction
		if genPrompt != "" {
			text, ok := a.prompts.Get(genPrompt)
			if !ok {
				return fmt.Errorf("unknown prompt %q (have: %s)", genPrompt, strings.Join(a.prompts.Names(), ", "))
			}
			instruction = text
		}
		if instruction == "" {
			return errors.New("--instruction or --prompt is required")
		}

		items := make([]models.Item, 0, len(genItems))
		for i, text := range genItems {
			items = append(items, models.Item{ID: fmt.Sprintf("cli-%d", i+1), Text: text})
		}
		res, _, err := a.pipeline.Generate(ctx, generator.Request{
			Instruction: instruction,
			Tags:        genTags,
			Contexts:    a.contexts.All(),
			Items:       items,
		})
		if err != nil {
			return err
		}

		entry := history.NewEntry(res, generator.SelectedTags(genTags), items, time.Now())
		if err := a.history.Append(context.WithoutCancel(ctx), entry); err != nil {
			a.log.Warn("history append failed", "error", err)
		}

		out := cmd.OutOrStdout()
		if genHTML {
			doc, err := publisher.Document(entry)
			if err != nil {
				return err
			}
			fmt.Fprint(out, doc)
		} else {
			b, err := json.Marshal(res)
			if err != nil {
				return err
			}
			out.Write(pretty.PrettyOptions(b, &pretty.Options{Width: 100, Indent: "  "}))
		}
		if !res.OK() {
			return fmt.Errorf("generation failed after %d attempts", res.Attempts)
		}
		return nil
	},
}

var contextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "List the context snippets",
	RunE:  func(cmd *cobra.Command, _ []string) error { return listCatalog(cmd, func(a *app) *catalog.Catalog { return a.contexts }) },
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the saved prompts",
	RunE:  func(cmd *cobra.Command, _ []string) error { return listCatalog(cmd, func(a *app) *catalog.Catalog { return a.prompts }) },
}

func listCatalog(cmd *cobra.Command, pick func(*app) *catalog.Catalog) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	c := pick(a)
	for _, name := range c.Names() {
		text, _ := c.Get(name)
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, preview(text, 72))
	}
	return nil
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.history.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s  %2d topics  %s\n",
				e.Key, e.Status, len(e.Result.Topics()), strings.Join(e.Tags, ","))
		}
		return nil
	},
}

var (
	processIn     string
	processConfig string
	processOut    string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Build the dataset from a raw dump of scraped tweets",
	Long: `Reads a raw tweet dump ({"twitter":{"users":{...}}}), keeps tweets with at
least 30 characters and 10 likes, tags each one with its account's tags from the
data config and writes the dataset file the dashboard imports.

Example:
  curator process --in raw/Dataset.json --data-config raw/data_config.json --out data_api/dataset.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := dataset.ProcessFile(processIn, processConfig, processOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d items to %s\n", n, processOut)
		return nil
	},
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server_addr)")

	generateCmd.Flags().StringVarP(&genInstruction, "instruction", "i", "", "instruction text")
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "name of a saved prompt to use as the instruction")
	generateCmd.Flags().StringSliceVarP(&genTags, "tag", "t", nil, "context tag (repeatable)")
	generateCmd.Flags().StringArrayVar(&genItems, "item", nil, "item text (repeatable)")
	generateCmd.Flags().BoolVar(&genHTML, "html", false, "print the HTML digest instead of JSON")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")

	processCmd.Flags().StringVar(&processIn, "in", "", "raw tweet dump (JSON)")
	processCmd.Flags().StringVar(&processConfig, "data-config", "", "data config with per-user tags (JSON)")
	processCmd.Flags().StringVar(&processOut, "out", "data_api/dataset.json", "dataset file to write")
	_ = processCmd.MarkFlagRequired("in")
	_ = processCmd.MarkFlagRequired("data-config")
}
