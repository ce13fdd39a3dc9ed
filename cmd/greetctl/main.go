// Command greetctl inspects and drives the greeting state from the shell,
// using the same configuration and backend as the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/seasonal-greetings/internal/app"
	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
	"github.com/zapponejosh/seasonal-greetings/internal/config"
	"github.com/zapponejosh/seasonal-greetings/internal/greeting"
	"github.com/zapponejosh/seasonal-greetings/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs once the root has run.
type cli struct {
	verbose bool
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "greetctl",
		Short: "Operate the seasonal greetings state",
		Long: `greetctl reads the same environment (and .env file) as the API server and
works directly on its storage backend.

Examples:
  greetctl season --date 2025-07-15
  greetctl message
  greetctl image
  greetctl reset winter
  greetctl status --json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if c.verbose {
				level = "debug"
			}
			c.cfg = cfg
			c.log = logger.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		c.seasonCmd(),
		c.messageCmd(),
		c.imageCmd(),
		c.resetCmd(),
		c.statusCmd(),
	)
	return root
}

func (c *cli) seasonCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "season",
		Short: "Print the Jalali season for today or a given date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := c.cfg.Location()
			t := time.Now().In(loc)
			if date != "" {
				var err error
				if t, err = calendar.ParseDateString(date, loc); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tjalali month %d\n",
				calendar.FormatDate(t), calendar.SeasonAt(t), calendar.JalaliMonth(t))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) messageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message",
		Short: "Print the next message and advance the rotation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				msg, err := a.Service.NextMessage(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
}

func (c *cli) imageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image",
		Short: "Select the next image and write the output artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				img, err := a.Service.NextImage(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\t%s -> %s (%d bytes)\n", img.Season, img.Name, c.cfg.OutputPath, len(img.Data))
				if img.Reset {
					fmt.Fprintf(out, "pool for %s was reset\n", img.Season)
				}
				return nil
			})
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "reset <season>",
		Short:     "Clear a season's used-image list",
		Args:      cobra.ExactArgs(1),
		ValidArgs: seasonNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, ok := calendar.ParseSeason(args[0])
			if !ok {
				return fmt.Errorf("unknown season %q (want one of %v)", args[0], seasonNames())
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Service.ResetSeason(cmd.Context(), season); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s reset\n", season)
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pool sizes, reset dates and the message position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				st, err := a.Service.Status(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(st)
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	return cmd
}

// withApp opens the backend for the duration of fn.
func (c *cli) withApp(ctx context.Context, fn func(*app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		c.log.Debug("command failed", slog.Any("error", err))
		if greeting.KindOf(err) != greeting.KindIOFailure {
			return fmt.Errorf("%s", greeting.PublicMessage(err))
		}
		return err
	}
	return nil
}

func printStatus(w io.Writer, st *greeting.Status) {
	fmt.Fprintf(w, "Date:           %s (jalali month %d)\n", st.Date, st.JalaliMonth)
	fmt.Fprintf(w, "Season:         %s\n", st.CurrentSeason)
	fmt.Fprintf(w, "Message index:  %d of %d\n", st.MessageIndex, st.MessageCount)
	fmt.Fprintln(w)

	names := make([]string, 0, len(st.Seasons))
	for name := range st.Seasons {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ss := st.Seasons[name]
		last := "never"
		if ss.LastReset != nil {
			last = *ss.LastReset
		}
		line := fmt.Sprintf("%-8s %d/%d used, last reset %s", name, ss.Used, ss.Images, last)
		if ss.Problem != "" {
			line += " [" + ss.Problem + "]"
		}
		fmt.Fprintln(w, line)
	}
}

func seasonNames() []string {
	out := make([]string, 0, 4)
	for _, s := range calendar.Seasons() {
		out = append(out, string(s))
	}
	return out
}
