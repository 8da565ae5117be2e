package doc

import (
	"github.com/ValentinKolb/dJSON/cmd/util"
	"github.com/ValentinKolb/dJSON/rpc/client"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/spf13/cobra"
)

var (
	docClient *client.DocumentClient

	// DocumentCommands represents the document command group
	DocumentCommands = &cobra.Command{
		Use:                "doc",
		Short:              "Perform JSON document operations",
		PersistentPreRunE:  setupDocumentClient,
		PersistentPostRunE: closeDocumentClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the document command
	util.SetupClientFlags(DocumentCommands)

	// Add subcommands
	DocumentCommands.AddCommand(setCmd)
	DocumentCommands.AddCommand(getCmd)
	DocumentCommands.AddCommand(mgetCmd)
	DocumentCommands.AddCommand(delCmd)
	DocumentCommands.AddCommand(forgetCmd)
	DocumentCommands.AddCommand(clearCmd)
	DocumentCommands.AddCommand(numIncrByCmd)
	DocumentCommands.AddCommand(numMultByCmd)
	DocumentCommands.AddCommand(toggleCmd)
	DocumentCommands.AddCommand(strAppendCmd)
	DocumentCommands.AddCommand(strLenCmd)
	DocumentCommands.AddCommand(arrAppendCmd)
	DocumentCommands.AddCommand(arrIndexCmd)
	DocumentCommands.AddCommand(arrInsertCmd)
	DocumentCommands.AddCommand(arrLenCmd)
	DocumentCommands.AddCommand(arrPopCmd)
	DocumentCommands.AddCommand(arrTrimCmd)
	DocumentCommands.AddCommand(objKeysCmd)
	DocumentCommands.AddCommand(objLenCmd)
	DocumentCommands.AddCommand(respCmd)
	DocumentCommands.AddCommand(debugMemoryCmd)
	DocumentCommands.AddCommand(pipeCmd)
	DocumentCommands.AddCommand(perfTestCmd)
}

// setupDocumentClient initializes the document client
func setupDocumentClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration
	config := util.GetClientConfig()

	// Configure logging before anything connects
	if err := common.InitLoggers(config.LogLevel); err != nil {
		return err
	}

	// Get the transport
	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the document client
	docClient, err = client.NewDocumentClient(
		*config,
		t,
		util.GetCodec(),
	)

	return err
}

// closeDocumentClient tears the transport down after the command ran
func closeDocumentClient(_ *cobra.Command, _ []string) error {
	if docClient == nil {
		return nil
	}
	return docClient.Close()
}
