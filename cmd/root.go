// Package cmd is the command line interface of mirrorhub.
package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	systemsinit "github.com/go-arrower/mirrorhub/contexts/systems/init"
)

const appName = "mirrorhub"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mirrorhub keeps track of mirror systems, their location, and the projects they host.",
		Long: `mirrorhub is a registry of mirror systems. It locates each system by its hostname
and serves the mirror lists of the hosted projects.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file, default is ./mirrorhub.yaml if present")

	return root
}

// NewMirrorhubCLI initialises the complete cli with its commands and returns the root command.
// The serve command stops on a value from osSignal. opts replace the adapters of the systems Context.
func NewMirrorhubCLI(osSignal <-chan os.Signal, opts ...systemsinit.Option) *cobra.Command {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(Version(appName))
	rootCmd.AddCommand(newServeCmd(osSignal, opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// Execute runs the mirrorhub cli.
func Execute() {
	if err := NewMirrorhubCLI(NewInterruptSignalChannel()).Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// NewInterruptSignalChannel returns a channel listening for os.Signals the server shuts down on.
func NewInterruptSignalChannel() chan os.Signal {
	signalsToListenTo := []os.Signal{
		syscall.SIGINT,                   // Strg + c
		syscall.SIGTERM, syscall.SIGQUIT, // terminate but finish/cleanup first, e.g. kill
		os.Interrupt,
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, signalsToListenTo...)

	return osSignal
}

func configFile(cmd *cobra.Command) string {
	file, _ := cmd.Flags().GetString("config")

	return file
}
