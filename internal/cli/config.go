package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imgajeed76/pgrid/internal/config"
	"github.com/imgajeed76/pgrid/internal/ui/styles"
	"github.com/imgajeed76/pgrid/internal/util"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get and set pgrid options",
		Long: `Get and set pgrid configuration options.

Options:
` + config.GenerateHelpText() + `

Examples:
  pgrid config grid.page_size            # Get value
  pgrid config grid.page_size 50         # Set value
  pgrid config db.url postgres://localhost/app
  pgrid config --list                    # List all config`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("path", false, "Print the config file path")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	showPath, _ := cmd.Flags().GetBool("path")

	if showPath {
		fmt.Println(config.Path())
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Printf("%s=%s\n", key, value)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("usage: pgrid config <key> [value]")
	}

	key := strings.ToLower(args[0])

	// Get or set?
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return unknownKeyError(key)
		}
		fmt.Println(value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return unknownKeyError(key)
		}
		return util.NewError("Invalid config value").
			WithMessage(err.Error()).
			Wrap(err)
	}

	if err := cfg.Save(); err != nil {
		return util.NewError("Cannot write config file").
			WithContext(config.Path()).
			Wrap(err)
	}

	value, _ := cfg.GetValue(key)
	fmt.Println(styles.SuccessMsg(fmt.Sprintf("Set %s=%s", key, value)))
	return nil
}

func unknownKeyError(key string) error {
	return util.NewError(fmt.Sprintf("Unknown config key '%s'", key)).
		WithSuggestions("pgrid config --list   # Show all keys")
}
