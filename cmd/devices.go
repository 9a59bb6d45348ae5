package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"telltales/internal/cli"
	"telltales/internal/telldus"
)

// Values accepted by --kind.
const (
	kindAll         = "all"
	kindControllers = "controllers"
	kindDevices     = "devices"
	kindSensors     = "sensors"
)

var (
	devicesKind        string
	devicesOutputFlags cli.OutputFlags
)

// devicesCmd represents the devices command group. On its own it lists
// everything.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Interact with Telldus Live devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listResources(cmd, kindAll, cli.OutputOptions{Format: cli.OutputFormatTable})
	},
}

// devicesListCmd represents the devices list command
var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Telldus Live resources",
	Long: `List the controllers, devices and sensors on the Telldus Live account.

Authentication runs first, exactly as in "telltales auth validate".

Examples:
  telltales devices list                  # Everything
  telltales devices list --kind sensors   # Sensors with their latest values
  telltales devices list -o json          # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: runDevicesList,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd)

	devicesListCmd.Flags().StringVarP(&devicesKind, "kind", "k", kindAll, "Resource category: all, controllers, devices or sensors")
	cli.RegisterOutputFlags(devicesListCmd, &devicesOutputFlags)
}

func runDevicesList(cmd *cobra.Command, args []string) error {
	kind := strings.ToLower(strings.TrimSpace(devicesKind))
	if _, err := listersFor(kind); err != nil {
		return err
	}
	opts, err := devicesOutputFlags.ToOutputOptions()
	if err != nil {
		return err
	}
	return listResources(cmd, kind, opts)
}

func listResources(cmd *cobra.Command, kind string, opts cli.OutputOptions) error {
	listers, err := listersFor(kind)
	if err != nil {
		return err
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	// Keep stdout clean for machine-readable formats.
	tableOutput := opts.Format == cli.OutputFormatTable || opts.Format == cli.OutputFormatPretty
	messages := cmd.ErrOrStderr()
	if tableOutput {
		messages = cmd.OutOrStdout()
	}

	outcome, err := env.authenticate(cmd.Context(), messages)
	if err != nil {
		return err
	}
	if outcome.AccountName != "" {
		fmt.Fprintf(messages, "Authenticated as %s.\n", outcome.AccountName)
	}

	entries, err := fetchEntries(cmd.Context(), outcome.Session, listers)
	if err != nil {
		return err
	}

	if tableOutput {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return cli.RenderResources(cmd.OutOrStdout(), entries, opts)
}

type lister func(*telldus.Session, context.Context) ([]telldus.Entry, error)

func listersFor(kind string) ([]lister, error) {
	controllers := (*telldus.Session).ListControllers
	devices := (*telldus.Session).ListDevices
	sensors := (*telldus.Session).ListSensors

	switch kind {
	case kindAll:
		return []lister{controllers, devices, sensors}, nil
	case kindControllers:
		return []lister{controllers}, nil
	case kindDevices:
		return []lister{devices}, nil
	case kindSensors:
		return []lister{sensors}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q (valid: %s, %s, %s, %s)", kind, kindAll, kindControllers, kindDevices, kindSensors)
	}
}

// fetchEntries runs the listers concurrently. The session's limiter still
// spaces the requests, so this only overlaps waiting with decoding.
func fetchEntries(ctx context.Context, session *telldus.Session, listers []lister) ([]telldus.Entry, error) {
	results := make([][]telldus.Entry, len(listers))

	g, gctx := errgroup.WithContext(ctx)
	for i, list := range listers {
		i, list := i, list
		g.Go(func() error {
			entries, err := list(session, gctx)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []telldus.Entry
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
