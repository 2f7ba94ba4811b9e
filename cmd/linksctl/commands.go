package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studiolinks/internal/config"
	"studiolinks/internal/directory"
	"studiolinks/internal/linksource"
	"studiolinks/internal/models"
	"studiolinks/internal/qr"
	"studiolinks/internal/validation"
)

// errNoWriter is returned by set/delete when the link table is read-only.
var errNoWriter = errors.New("set and delete require LINK_SOURCE=postgres")

// linkWriter edits the postgres link table.
type linkWriter interface {
	UpsertLink(ctx context.Context, link models.Link) error
	DeleteLink(ctx context.Context, slug string) error
}

// cli holds what the commands operate on. Fields left nil are opened from
// the environment before a command runs.
type cli struct {
	cfg     *config.Config
	palette []string
	dir     *directory.Directory
	writer  linkWriter
	out     io.Writer
	closer  func()
}

func (a *cli) open(ctx context.Context) error {
	if a.dir != nil {
		return nil
	}
	a.cfg = config.Load()
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return err
	}
	a.palette = yamlCfg.QR.Palette

	links, err := linksource.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.dir = links.Directory
	if links.DB != nil {
		a.writer = links.DB
	}
	a.closer = links.Close
	return nil
}

func (a *cli) close() {
	if a.closer != nil {
		a.closer()
	}
}

// execute runs the command line in args and releases whatever the command
// opened, whether or not it succeeded.
func execute(a *cli, args []string) error {
	defer a.close()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd(a *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "linksctl",
		Short:         "Inspect and manage the studio link directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.AddCommand(
		newResolveCmd(a),
		newListCmd(a),
		newQRCmd(a),
		newSetCmd(a),
		newDeleteCmd(a),
	)
	return root
}

func newResolveCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <slug>",
		Short: "Print the destination of a slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, ok := validation.ValidateSlug(args[0])
			if !ok {
				return fmt.Errorf("invalid slug %q", args[0])
			}
			dest, err := a.dir.Resolve(cmd.Context(), slug)
			if err != nil {
				return fmt.Errorf("%s: %w", slug, err)
			}
			fmt.Fprintln(a.out, dest)
			return nil
		},
	}
}

func newListCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every link in the directory, sorted by slug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.dir.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			slugs := make([]string, 0, len(snap.Links))
			for slug := range snap.Links {
				slugs = append(slugs, slug)
			}
			slices.Sort(slugs)

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, slug := range slugs {
				fmt.Fprintf(w, "%s\t%s\n", slug, snap.Links[slug])
			}
			return w.Flush()
		},
	}
}

func newQRCmd(a *cli) *cobra.Command {
	var output, target, brand, color, baseURL string

	cmd := &cobra.Command{
		Use:   "qr <slug>",
		Short: "Write the branded QR code for a slug as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, ok := validation.ValidateSlug(args[0])
			if !ok {
				return fmt.Errorf("invalid slug %q", args[0])
			}
			dest, err := a.dir.Resolve(cmd.Context(), slug)
			if err != nil {
				return fmt.Errorf("%s: %w", slug, err)
			}

			var text string
			switch target {
			case qr.TargetLong:
				text = dest
			case qr.TargetShort:
				if baseURL == "" {
					baseURL = a.cfg.BaseURL
				}
				if baseURL == "" {
					return errors.New("short target needs --base-url or BASE_URL")
				}
				text = baseURL + "/" + slug
			default:
				return fmt.Errorf("unknown target %q", target)
			}

			bg, err := qr.ChooseBackground(color, a.palette, a.cfg.MinLightness, a.cfg.MaxLightness, rand.IntN)
			if err != nil {
				return err
			}
			png, err := qr.Encode(text, qr.Options{
				Background: bg,
				Badge:      qr.BrandText(brand, a.cfg.BrandText),
			})
			if err != nil {
				return err
			}

			if output == "" {
				output = slug + ".png"
			}
			if output == "-" {
				_, err = a.out.Write(png)
				return err
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", output, text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default "<slug>.png")`)
	cmd.Flags().StringVar(&target, "target", qr.TargetShort, "encode the short URL or the long destination")
	cmd.Flags().StringVar(&brand, "brand", "", "badge text (default QR_BRAND_TEXT)")
	cmd.Flags().StringVar(&color, "color", "", "background hex colour (default random from palette)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public origin for short URLs (default BASE_URL)")
	return cmd
}

func newSetCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set <slug> <url>",
		Short: "Create or replace a link (postgres source only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.writer == nil {
				return errNoWriter
			}
			return a.writer.UpsertLink(cmd.Context(), models.Link{Slug: args[0], URL: args[1]})
		},
	}
}

func newDeleteCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Remove a link (postgres source only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.writer == nil {
				return errNoWriter
			}
			return a.writer.DeleteLink(cmd.Context(), args[0])
		},
	}
}
