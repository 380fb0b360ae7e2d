package cmd

import (
	"github.com/spf13/cobra"

	"wheelhouse/pkg/console"
	"wheelhouse/pkg/pydist"
	"wheelhouse/pkg/vendorfile"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Fetches the dependencies listed in the Vendorfile",
	Long: `Reads the Vendorfile at the project root and materializes every entry in
the vendor directory. Local paths are copied, git sources are cloned at the
requested tag, branch or semver constraint and archives are downloaded,
verified and unpacked. Entries that are already up to date are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newContext()
		root, err := findRoot()
		if err != nil {
			return err
		}

		cfg, err := pydist.LoadConfig(root)
		if err != nil {
			return err
		}

		console.PrintTask("Syncing vendored dependencies")
		err = vendorfile.NewSyncer(root, cfg.VendorDir).Sync(ctx)
		if err != nil {
			return err
		}

		console.PrintTask("Done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vendorCmd)
}
