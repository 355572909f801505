package cli

import (
	"github.com/spf13/cobra"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long:  `Launch the interactive terminal user interface for the invoice ledger.`,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(appInstance)
}
