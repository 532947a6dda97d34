package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-arrower/mirrorhub"
	projectsinit "github.com/go-arrower/mirrorhub/contexts/projects/init"
	systemsinit "github.com/go-arrower/mirrorhub/contexts/systems/init"
)

func newServeCmd(osSignal <-chan os.Signal, opts []systemsinit.Option) *cobra.Command {
	return &cobra.Command{
		Use:                   "serve",
		Short:                 "Start the http api and the status endpoint",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			di, _, err := initialise(ctx, configFile(cmd), opts)
			if err != nil {
				return err
			}

			go func() {
				select {
				case <-osSignal:
					cancel()
				case <-ctx.Done():
				}
			}()

			if err = di.Run(ctx); err != nil {
				return fmt.Errorf("could not serve: %w", err)
			}

			return nil
		},
	}
}

// initialise loads the configuration and wires all Contexts into a new Container.
func initialise(
	ctx context.Context,
	file string,
	opts []systemsinit.Option,
) (*mirrorhub.Container, *systemsinit.SystemsContext, error) {
	conf, err := mirrorhub.LoadConfig(file)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // already descriptive
	}

	di, err := mirrorhub.InitialiseDefaultDependencies(ctx, conf)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // already descriptive
	}

	pc, err := projectsinit.NewProjectsContext(di)
	if err != nil {
		return nil, nil, shutdownOnError(ctx, di, err)
	}

	sc, err := systemsinit.NewSystemsContext(di, pc, opts...)
	if err != nil {
		return nil, nil, shutdownOnError(ctx, di, err)
	}

	return di, sc, nil
}

func shutdownOnError(ctx context.Context, di *mirrorhub.Container, err error) error {
	if sErr := di.Shutdown(ctx); sErr != nil {
		return fmt.Errorf("%w, and could not shutdown: %w", err, sErr)
	}

	return err
}
