package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/oscarandresgarntor/reading-backlog/internal/backlog"
	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
	"github.com/oscarandresgarntor/reading-backlog/internal/fetch"
	"github.com/oscarandresgarntor/reading-backlog/internal/httpapi"
	"github.com/oscarandresgarntor/reading-backlog/internal/store"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add a URL to the backlog",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: "comma-separated tags"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Value: "medium", Usage: "priority: low, medium, high"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one URL argument")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			priority, err := backlog.ParsePriority(c.String("priority"))
			if err != nil {
				return err
			}
			st, fetcher, pipeline, err := components(cfg)
			if err != nil {
				return err
			}

			doc, err := fetcher.Get(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			meta, err := pipeline.Extract(c.Context, doc, backlog.SplitTags(c.String("tags")))
			if err != nil {
				return err
			}
			article := backlog.New(doc.URL, extract.Domain(doc.URL), meta, priority)
			if err := st.Add(article); err != nil {
				return err
			}
			printAdded(article)
			return nil
		},
	}
}

func addLocalCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-local",
		Usage:     "add a local PDF file to the backlog",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: "comma-separated tags"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Value: "medium", Usage: "priority: low, medium, high"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			priority, err := backlog.ParsePriority(c.String("priority"))
			if err != nil {
				return err
			}
			st, _, pipeline, err := components(cfg)
			if err != nil {
				return err
			}

			doc, err := fetch.ReadLocalPDF(c.Args().First())
			if err != nil {
				return err
			}
			meta, err := pipeline.Extract(c.Context, doc, backlog.SplitTags(c.String("tags")))
			if err != nil {
				return err
			}
			// Local files carry the file name as the source instead of a domain.
			article := backlog.New(doc.URL, filepath.Base(c.Args().First()), meta, priority)
			if err := st.Add(article); err != nil {
				return err
			}
			printAdded(article)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list articles in the backlog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "filter: unread, read"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "filter: low, medium, high"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "filter by tag"},
			&cli.StringFlag{Name: "source", Usage: "filter by source domain"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.StorePath())
			if err != nil {
				return err
			}

			var f store.Filter
			if v := c.String("status"); v != "" {
				if f.Status, err = backlog.ParseStatus(v); err != nil {
					return err
				}
			}
			if v := c.String("priority"); v != "" {
				if f.Priority, err = backlog.ParsePriority(v); err != nil {
					return err
				}
			}
			f.Tag = c.String("tag")
			f.Source = c.String("source")

			articles, err := st.All(f)
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Println("No articles found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSOURCE\tPRIORITY\tSTATUS\tTAGS")
			for _, a := range articles {
				tags := "-"
				if len(a.Tags) > 0 {
					shown := a.Tags
					if len(shown) > 3 {
						shown = shown[:3]
					}
					tags = strings.Join(shown, ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID[:8], truncate(a.Title, 40), truncate(a.Source, 15), a.Priority, a.Status, tags)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nTotal: %d articles\n", len(articles))
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show full details of an article",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			_, a, err := resolveArg(c)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", a.Title)
			fmt.Println(strings.Repeat("-", 60))
			fmt.Printf("URL:      %s\n", a.URL)
			fmt.Printf("Source:   %s\n", a.Source)
			fmt.Printf("Status:   %s\n", a.Status)
			fmt.Printf("Priority: %s\n", a.Priority)
			fmt.Printf("Added:    %s\n", a.DateAdded.Format("2006-01-02 15:04"))
			if a.DatePublished != "" {
				fmt.Printf("Published: %s\n", a.DatePublished)
			}
			if a.Author != "" {
				fmt.Printf("Author:   %s\n", a.Author)
			}
			if len(a.Tags) > 0 {
				fmt.Printf("Tags:     %s\n", strings.Join(a.Tags, ", "))
			}
			if a.Summary != "" {
				fmt.Printf("\nSummary:\n%s\n", a.Summary)
			}
			fmt.Printf("\nID: %s\n", a.ID)
			return nil
		},
	}
}

func statusCommand(name string) *cli.Command {
	status := backlog.StatusRead
	usage := "mark an article as read"
	if name == "unread" {
		status = backlog.StatusUnread
		usage = "mark an article as unread"
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			st, a, err := resolveArg(c)
			if err != nil {
				return err
			}
			if _, err := st.Update(a.ID, backlog.Update{Status: &status}); err != nil {
				return err
			}
			fmt.Printf("Marked as %s: %s\n", status, a.Title)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete an article from the backlog",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			st, a, err := resolveArg(c)
			if err != nil {
				return err
			}
			if !c.Bool("force") {
				fmt.Printf("Delete %q? [y/N] ", a.Title)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if answer = strings.ToLower(strings.TrimSpace(answer)); answer != "y" && answer != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}
			if err := st.Delete(a.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted: %s\n", a.Title)
			return nil
		},
	}
}

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "replace the tags of an article",
		ArgsUsage: "<id> <comma-separated tags>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected an article id and a tag list")
			}
			st, a, err := resolveArg(c)
			if err != nil {
				return err
			}
			tags := backlog.SplitTags(c.Args().Get(1))
			if _, err := st.Update(a.ID, backlog.Update{Tags: &tags}); err != nil {
				return err
			}
			fmt.Printf("Updated tags: %s\n", strings.Join(tags, ", "))
			return nil
		},
	}
}

func priorityCommand() *cli.Command {
	return &cli.Command{
		Name:      "priority",
		Usage:     "set the priority of an article",
		ArgsUsage: "<id> <low|medium|high>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected an article id and a priority level")
			}
			priority, err := backlog.ParsePriority(c.Args().Get(1))
			if err != nil {
				return err
			}
			st, a, err := resolveArg(c)
			if err != nil {
				return err
			}
			if _, err := st.Update(a.ID, backlog.Update{Priority: &priority}); err != nil {
				return err
			}
			fmt.Printf("Updated priority: %s\n", priority)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export the backlog to a Markdown file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file path"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.StorePath())
			if err != nil {
				return err
			}
			path, err := st.ExportMarkdown(c.String("output"))
			if err != nil {
				return err
			}
			fmt.Printf("Exported to: %s\n", path)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (host:port)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if v := c.String("addr"); v != "" {
				cfg.ListenAddr = v
			}
			st, fetcher, pipeline, err := components(cfg)
			if err != nil {
				return err
			}
			srv := &httpapi.Server{Store: st, Fetcher: fetcher, Pipeline: pipeline}
			log.Info().Str("addr", cfg.ListenAddr).Msg("serving reading backlog API")
			return http.ListenAndServe(cfg.ListenAddr, srv.Router())
		},
	}
}

// resolveArg loads config and the store, then resolves the first CLI argument
// as a full or partial article id.
func resolveArg(c *cli.Context) (*store.Store, backlog.Article, error) {
	if c.NArg() < 1 {
		return nil, backlog.Article{}, fmt.Errorf("expected an article id")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, backlog.Article{}, err
	}
	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, backlog.Article{}, err
	}
	a, err := st.Resolve(c.Args().First())
	if err != nil {
		return nil, backlog.Article{}, err
	}
	return st, a, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func printAdded(a backlog.Article) {
	note := ""
	if a.UsedLLM {
		note = " (via LLM)"
	}
	fmt.Printf("\nAdded:%s %s\n", note, a.Title)
	fmt.Printf("Source: %s | ID: %s\n", a.Source, a.ID[:8])
	if a.Summary != "" {
		fmt.Println(a.Summary)
	}
	if len(a.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(a.Tags, ", "))
	}
}
