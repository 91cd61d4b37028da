package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/realestate-agents/lead_wizard/internal/backend"
	"github.com/realestate-agents/lead_wizard/internal/location"
	"github.com/realestate-agents/lead_wizard/internal/logging"
	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

type options struct {
	flow     string
	baseURL  string
	debounce time.Duration
	codeTTL  time.Duration
	logLevel string
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "leadwizard",
		Short:        "Capture a home buyer or seller lead from the terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.flow, "flow", wizard.FlowBuy, "wizard variant: buy or sell-and-buy")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", defaultBaseURL(), "lead service base URL (BACKEND_BASE_URL)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", location.DefaultDebounce, "delay before an address search is sent")
	cmd.Flags().DurationVar(&opts.codeTTL, "code-ttl", 5*time.Minute, "how long a verification code is accepted locally")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level for backend calls")

	return cmd
}

func defaultBaseURL() string {
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func run(ctx context.Context, out, errOut io.Writer, opts options) error {
	logger := logging.NewWriter(errOut, opts.logLevel, "text")
	client := backend.NewClient(backend.Options{BaseURL: opts.baseURL, Logger: logger})

	c, err := wizard.New(opts.flow, wizard.Deps{
		Backend:   client,
		Locations: location.NewSearcher(client, opts.debounce),
		CodeTTL:   opts.codeTTL,
	})
	if err != nil {
		return err
	}

	r := &runner{c: c, ask: newHuhPrompter(), out: out}
	err = r.run(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		c.Close()
		fmt.Fprintln(out, styles.muted.Render("Cancelled, nothing was sent."))
		return nil
	}
	return err
}
