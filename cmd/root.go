package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dJSON/cmd/doc"
	"github.com/ValentinKolb/dJSON/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "djson",
		Short: "JSON document commands for key-value stores",
		Long: fmt.Sprintf(`dJSON (v%s)

A client for the JSON document module of RESP compatible key-value
stores. Documents are addressed by key and path and decoded into
canonical values regardless of the reply shape on the wire.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dJSON",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dJSON v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(doc.DocumentCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "redis", util.WrapString("transport to use (redis, local)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warning", util.WrapString("log level (debug, info, warning, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
