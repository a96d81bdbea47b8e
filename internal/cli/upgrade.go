package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamdigital/landing/internal/selfupdate"
)

var (
	upgradeCheckOnly bool
	upgradeYes       bool
)

// newUpdateSource builds the release source (can be replaced in tests)
var newUpdateSource = func() (selfupdate.Source, error) {
	return selfupdate.NewSource(os.Getenv("GITHUB_TOKEN"))
}

// executablePath locates the binary to replace (can be replaced in tests)
var executablePath = os.Executable

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade landing to the latest release",
	Long: `Check GitHub for the latest landing release and replace the running
binary with it. GITHUB_TOKEN is used when set to avoid rate limits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpgrade(upgradeCheckOnly, upgradeYes)
	},
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeCheckOnly, "check", false, "only report whether an update is available")
	upgradeCmd.Flags().BoolVarP(&upgradeYes, "yes", "y", false, "upgrade without asking")
}

func runUpgrade(checkOnly, yes bool) error {
	src, err := newUpdateSource()
	if err != nil {
		return err
	}

	check, err := selfupdate.Detect(src, selfupdate.Slug, appVersion)
	if errors.Is(err, selfupdate.ErrNoRelease) {
		fmt.Println("No release available for this platform")
		return nil
	}
	if err != nil {
		return err
	}

	if !check.Newer() {
		fmt.Printf("landing %s is up to date\n", appVersion)
		return nil
	}
	fmt.Printf("Update available: %s -> %s\n", appVersion, check.Latest)
	if check.Release.ReleaseNotes != "" {
		fmt.Printf("\n%s\n\n", check.Release.ReleaseNotes)
	}
	if checkOnly {
		return nil
	}

	if !yes {
		if !stdinIsTerminal() {
			return fmt.Errorf("refusing to upgrade without confirmation; pass --yes")
		}
		if !confirm("Install it now? [y/N]: ") {
			fmt.Println("Upgrade cancelled")
			return nil
		}
	}

	cmdPath, err := executablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.Apply(src, check, cmdPath); err != nil {
		return err
	}
	fmt.Printf("Upgraded to %s\n", check.Latest)
	return nil
}
